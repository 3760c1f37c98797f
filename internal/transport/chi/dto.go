package chi

import (
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
)

type searchResponse struct {
	Query   string          `json:"query"`
	Limit   int             `json:"limit"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
}

type batchRequest struct {
	Documents []document.Record `json:"documents"`
}

type strategyRequest struct {
	Strategy string `json:"strategy"`
}
