package intake

import (
	"fmt"
	"strings"
	"time"

	"intake-go/internal/model"
)

// Report tier thresholds. Records below reportMinScore never appear;
// HIGH is >= highTierMinScore, MEDIUM is the rest.
const (
	reportMinScore   = 5
	highTierMinScore = 8
)

// BuildReport renders the evidence ledger report as Markdown. Records are
// fetched once with the store's deterministic ordering (score descending,
// ingestion time ascending) and partitioned into HIGH and MEDIUM tiers;
// every record with score >= 5 lands in exactly one tier.
func (s *IntakeService) BuildReport() (string, error) {
	records, err := s.ledger.QueryByMinScore(reportMinScore)
	if err != nil {
		return "", fmt.Errorf("querying ledger: %w", err)
	}

	var high, medium []*model.EvidenceRecord
	for _, r := range records {
		if r.RelevanceScore >= highTierMinScore {
			high = append(high, r)
		} else {
			medium = append(medium, r)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - EVIDENCE LEDGER REPORT\n", s.profile.CaseTag)
	fmt.Fprintf(&b, "Generated: %s\n", s.clock.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Relevant Documents: %d\n\n", len(records))

	b.WriteString("## HIGH PRIORITY EVIDENCE (Score 8-10)\n")
	for _, doc := range high {
		fmt.Fprintf(&b, "- **%s** (ID: %s)\n", doc.Filename, doc.Identity)
		fmt.Fprintf(&b, "  Path: %s\n", doc.OriginalPath)
		fmt.Fprintf(&b, "  Type: %s | Score: %d/10\n", doc.DocumentType, doc.RelevanceScore)
		if doc.EmailFrom != "" {
			fmt.Fprintf(&b, "  From: %s | To: %s\n", doc.EmailFrom, doc.EmailTo)
			fmt.Fprintf(&b, "  Subject: %s\n", doc.EmailSubject)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## MEDIUM PRIORITY EVIDENCE (Score 5-7)\n")
	for _, doc := range medium {
		fmt.Fprintf(&b, "- %s (Score: %d/10)\n", doc.Filename, doc.RelevanceScore)
	}

	return b.String(), nil
}
