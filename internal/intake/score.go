package intake

import "strings"

// CaseProfile identifies the legal matter documents are scored against.
// All matching is case-insensitive; the values here are stored lowercased.
type CaseProfile struct {
	Surname         string // case subject's surname
	SubjectEmail    string // known email address, matched as an exact literal
	OpposingCounsel string // opposing-counsel name phrase
	CaseTag         string // e.g. "ARDC_SCHATZ_2025", passed to the identity service
	DomainTag       string // e.g. "LEGAL", passed to the identity service
}

// NewCaseProfile normalizes the match terms for scoring.
func NewCaseProfile(surname, subjectEmail, opposingCounsel, caseTag, domainTag string) CaseProfile {
	return CaseProfile{
		Surname:         strings.ToLower(strings.TrimSpace(surname)),
		SubjectEmail:    strings.ToLower(strings.TrimSpace(subjectEmail)),
		OpposingCounsel: strings.ToLower(strings.TrimSpace(opposingCounsel)),
		CaseTag:         strings.TrimSpace(caseTag),
		DomainTag:       strings.TrimSpace(domainTag),
	}
}

// Scoring term sets. These are generic legal-process and financial signals,
// independent of the specific matter.
var (
	legalTerms     = []string{"attorney", "legal", "counsel"}
	financialTerms = []string{"retainer", "billing", "invoice"}
)

// maxRelevanceScore caps the summed rule contributions.
const maxRelevanceScore = 10

// Score rates a document's likely relevance to the case on a 0-10 scale.
// It is a pure function of the profile, the file path, and the content
// sample: the same inputs always produce the same score. Rules match
// independently and their contributions are summed, then clamped. This is
// a cheap triage signal, not a classifier, and false positives are fine.
func Score(profile CaseProfile, path string, contentSample string) int {
	pathLower := strings.ToLower(path)
	contentLower := strings.ToLower(contentSample)

	score := 0
	if profile.Surname != "" &&
		(strings.Contains(pathLower, profile.Surname) || strings.Contains(contentLower, profile.Surname)) {
		score += 8
	}
	if profile.SubjectEmail != "" && strings.Contains(contentLower, profile.SubjectEmail) {
		score += 9
	}
	if profile.OpposingCounsel != "" && strings.Contains(contentLower, profile.OpposingCounsel) {
		score += 6
	}
	if containsAny(contentLower, legalTerms) {
		score += 3
	}
	if containsAny(contentLower, financialTerms) {
		score += 4
	}

	if score > maxRelevanceScore {
		score = maxRelevanceScore
	}
	return score
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
