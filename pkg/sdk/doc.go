// Package textdex is the embedded Go SDK for the textdex search engine.
// It wires the document store, TF-IDF index, and cache coordinator into
// a single in-process client; no server deployment is required.
//
// Basic usage:
//
//	client, err := textdex.New(textdex.WithMemoryCache())
//	if err != nil { ... }
//	defer client.Close()
//
//	_ = client.IndexDocument(ctx, "doc1", "cats and dogs", nil)
//	results, _ := client.Search(ctx, "cats", 10)
package textdex
