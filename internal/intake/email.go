package intake

import (
	"bufio"
	"io"
	"strings"

	"intake-go/internal/model"
)

// emailHeaderScanLimit caps how many lines are inspected for headers.
// Real message headers appear at the top; scanning further just reads body.
const emailHeaderScanLimit = 50

// ExtractEmailMetadata pulls the From/To/Subject/Date headers out of an
// email-formatted stream. Matching is a case-sensitive prefix check per
// line and the first occurrence of each header wins. Invalid UTF-8 in
// values is replaced rather than rejected. A scan error mid-stream returns
// whatever was extracted up to that point along with the error; callers
// treat extraction as best-effort.
func ExtractEmailMetadata(r io.Reader) (model.EmailMetadata, error) {
	var meta model.EmailMetadata

	scanner := bufio.NewScanner(r)
	for i := 0; i < emailHeaderScanLimit && scanner.Scan(); i++ {
		line := strings.ToValidUTF8(scanner.Text(), "�")
		switch {
		case strings.HasPrefix(line, "From:"):
			if meta.From == "" {
				meta.From = strings.TrimSpace(line[len("From:"):])
			}
		case strings.HasPrefix(line, "To:"):
			if meta.To == "" {
				meta.To = strings.TrimSpace(line[len("To:"):])
			}
		case strings.HasPrefix(line, "Subject:"):
			if meta.Subject == "" {
				meta.Subject = strings.TrimSpace(line[len("Subject:"):])
			}
		case strings.HasPrefix(line, "Date:"):
			if meta.Date == "" {
				meta.Date = strings.TrimSpace(line[len("Date:"):])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return meta, err
	}
	return meta, nil
}
