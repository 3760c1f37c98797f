// Package search holds the search result shapes shared by the index,
// cache, and transport layers.
package search

// Result is a single ranked search hit in its external record shape.
// The JSON field names are part of the persisted cache format.
type Result struct {
	DocID    string         `json:"doc_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// TermWeight is one term of a document with its index weight.
type TermWeight struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TermContribution is one term's share of a query-document similarity.
type TermContribution struct {
	Term         string  `json:"term"`
	QueryWeight  float64 `json:"query_weight"`
	DocWeight    float64 `json:"doc_weight"`
	Contribution float64 `json:"contribution"`
}

// Explanation describes why a document scored the way it did.
type Explanation struct {
	Similarity    float64            `json:"similarity"`
	MatchingTerms int                `json:"matching_terms"`
	Contributions []TermContribution `json:"term_contributions"`
}
