package textdex

import (
	"github.com/kailas-cloud/textdex/internal/domain/document"
	"github.com/kailas-cloud/textdex/internal/domain/search"
	"github.com/kailas-cloud/textdex/internal/engine"
)

// Record is a document in its external record shape.
type Record = document.Record

// Result is a single ranked search hit.
type Result = search.Result

// TermWeight is one term of a document with its index weight.
type TermWeight = search.TermWeight

// Explanation describes why a document scored the way it did.
type Explanation = search.Explanation

// Stats is the merged engine statistics snapshot.
type Stats = engine.Stats
