package intake_test

import (
	"strings"
	"testing"

	"intake-go/internal/intake"
)

func TestExtractEmailMetadata(t *testing.T) {
	t.Run("extracts all headers", func(t *testing.T) {
		raw := strings.Join([]string{
			"From: mschatz@firmmail.com",
			"To: client@example.com",
			"Subject: Retainer agreement",
			"Date: Mon, 13 Jan 2025 09:15:00 -0600",
			"",
			"Body text here.",
		}, "\n")

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.From != "mschatz@firmmail.com" {
			t.Errorf("From = %q, want %q", meta.From, "mschatz@firmmail.com")
		}
		if meta.To != "client@example.com" {
			t.Errorf("To = %q, want %q", meta.To, "client@example.com")
		}
		if meta.Subject != "Retainer agreement" {
			t.Errorf("Subject = %q, want %q", meta.Subject, "Retainer agreement")
		}
		if meta.Date != "Mon, 13 Jan 2025 09:15:00 -0600" {
			t.Errorf("Date = %q, want %q", meta.Date, "Mon, 13 Jan 2025 09:15:00 -0600")
		}
	})

	t.Run("missing headers stay empty", func(t *testing.T) {
		raw := "Subject: only a subject\n\nBody.\n"

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.Subject != "only a subject" {
			t.Errorf("Subject = %q, want %q", meta.Subject, "only a subject")
		}
		if meta.From != "" || meta.To != "" || meta.Date != "" {
			t.Errorf("expected empty From/To/Date, got From=%q To=%q Date=%q", meta.From, meta.To, meta.Date)
		}
	})

	t.Run("first occurrence of a header wins", func(t *testing.T) {
		raw := strings.Join([]string{
			"From: first@example.com",
			"From: second@example.com",
			"Subject: original",
			"Subject: forwarded",
		}, "\n")

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.From != "first@example.com" {
			t.Errorf("From = %q, want %q", meta.From, "first@example.com")
		}
		if meta.Subject != "original" {
			t.Errorf("Subject = %q, want %q", meta.Subject, "original")
		}
	})

	t.Run("matching is case-sensitive on the header name", func(t *testing.T) {
		raw := "FROM: shouty@example.com\nfrom: quiet@example.com\n"

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.From != "" {
			t.Errorf("From = %q, want empty (non-canonical header casing)", meta.From)
		}
	})

	t.Run("values are trimmed", func(t *testing.T) {
		raw := "From:    spaced@example.com   \n"

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.From != "spaced@example.com" {
			t.Errorf("From = %q, want %q", meta.From, "spaced@example.com")
		}
	})

	t.Run("headers beyond the scan limit are ignored", func(t *testing.T) {
		var lines []string
		for i := 0; i < 60; i++ {
			lines = append(lines, "X-Filler: padding")
		}
		lines = append(lines, "From: late@example.com")

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(strings.Join(lines, "\n")))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if meta.From != "" {
			t.Errorf("From = %q, want empty (header past scan limit)", meta.From)
		}
	})

	t.Run("invalid utf-8 in values is replaced", func(t *testing.T) {
		raw := "Subject: caf\xff\xfe report\n"

		meta, err := intake.ExtractEmailMetadata(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}

		if !strings.Contains(meta.Subject, "�") {
			t.Errorf("Subject = %q, want replacement characters for invalid bytes", meta.Subject)
		}
		if strings.Contains(meta.Subject, "\xff") {
			t.Errorf("Subject = %q still contains invalid bytes", meta.Subject)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		meta, err := intake.ExtractEmailMetadata(strings.NewReader(""))
		if err != nil {
			t.Fatalf("ExtractEmailMetadata() error = %v", err)
		}
		if meta.From != "" || meta.To != "" || meta.Subject != "" || meta.Date != "" {
			t.Errorf("expected empty metadata, got %+v", meta)
		}
	})
}
