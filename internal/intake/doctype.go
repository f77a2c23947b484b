package intake

import (
	"path/filepath"
	"strings"

	"intake-go/internal/model"
)

// eligibleExtensions is the set of file extensions the pipeline accepts.
// Files outside this set are skipped silently, not failed.
var eligibleExtensions = map[string]bool{
	".eml":  true,
	".msg":  true,
	".pdf":  true,
	".txt":  true,
	".docx": true,
}

// Content sample budgets per document type. PDF and UNKNOWN are binary
// formats whose content is never sampled; only the path is scored for them.
const (
	emailSampleBytes = 10000
	textSampleBytes  = 5000
)

// Eligible reports whether the file at path is accepted by the pipeline,
// judged by its extension (case-insensitive).
func Eligible(path string) bool {
	return eligibleExtensions[strings.ToLower(filepath.Ext(path))]
}

// Classify maps a file path to its document type by extension.
// Only .eml is treated as email-formatted; .msg is an opaque Outlook
// container and .docx a binary archive, so both classify as UNKNOWN.
func Classify(path string) model.DocumentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".eml":
		return model.DocumentTypeEmail
	case ".pdf":
		return model.DocumentTypePDF
	case ".txt":
		return model.DocumentTypeText
	default:
		return model.DocumentTypeUnknown
	}
}

// SampleBudget returns how many bytes of content may be read for scoring
// a document of the given type. Zero means the content is never sampled.
func SampleBudget(t model.DocumentType) int {
	switch t {
	case model.DocumentTypeEmail:
		return emailSampleBytes
	case model.DocumentTypeText:
		return textSampleBytes
	default:
		return 0
	}
}
