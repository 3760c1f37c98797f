package textdex

import "github.com/kailas-cloud/textdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound    = domain.ErrDocumentNotFound
	ErrAlreadyExists       = domain.ErrAlreadyExists
	ErrValidation          = domain.ErrValidation
	ErrEmptyCorpus         = domain.ErrEmptyCorpus
	ErrUnsupportedStrategy = domain.ErrUnsupportedStrategy
)
