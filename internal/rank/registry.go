package rank

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/textdex/internal/domain"
)

// DefaultStrategy is the strategy used when none is configured.
const DefaultStrategy = "tfidf"

// registry maps strategy names to constructors. The set is closed at
// compile time; adding a strategy means adding an entry here.
var registry = map[string]func() Strategy{
	"tfidf": func() Strategy { return NewCosine() },
}

// New resolves a strategy by name. Unknown names return
// ErrUnsupportedStrategy naming the registered strategies; callers keep
// their current strategy in that case.
func New(name string) (Strategy, error) {
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			domain.ErrUnsupportedStrategy, name, strings.Join(Available(), ", "))
	}
	return ctor(), nil
}

// Available returns the registered strategy names, sorted.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
