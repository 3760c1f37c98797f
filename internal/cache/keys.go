package cache

import (
	"crypto/md5" //nolint:gosec // key derivation, not security; format is part of the persisted cache contract
	"encoding/hex"
	"strconv"
	"strings"
)

// Key namespaces over the store's flat key space.
const (
	DocPrefix   = "doc:"
	QueryPrefix = "query:"
	StatsPrefix = "stats:"

	statsKey = StatsPrefix + "engine_stats"
)

// DocKey derives the cache key for a document.
func DocKey(id string) string {
	return DocPrefix + id
}

// QueryKey derives the cache key for a query + limit pair. The query is
// normalized (lower-cased, trimmed) and hashed together with the limit,
// so whitespace and case variants share an entry while different limits
// never collide.
func QueryKey(query string, limit int) string {
	normalized := strings.TrimSpace(strings.ToLower(query))
	sum := md5.Sum([]byte(normalized + ":" + strconv.Itoa(limit))) //nolint:gosec // see import note
	return QueryPrefix + hex.EncodeToString(sum[:])
}
