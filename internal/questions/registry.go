package questions

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// DefaultSimilarityThreshold is the ratio above which a candidate counts as
// a near-duplicate.
const DefaultSimilarityThreshold = 70

// ratioParams weighs a substitution as a delete plus an insert, which turns
// the edit distance into the classic fuzzy-matching ratio.
var ratioParams = levenshtein.NewParams().SubCost(2)

// Similarity returns a 0-100 ratio of how alike a and b are, ignoring case.
func Similarity(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 || a == "" || b == "" {
		return 0
	}
	dist := levenshtein.Distance(a, b, ratioParams)
	return int(math.Round(100 * float64(total-dist) / float64(total)))
}

// Registry holds the question texts accepted in one generation session.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	threshold int
	texts     []string
}

// NewRegistry returns an empty registry. A threshold of zero or less uses
// DefaultSimilarityThreshold.
func NewRegistry(threshold int) *Registry {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Registry{threshold: threshold}
}

// IsUnique reports whether text is no more similar than the threshold to
// every registered text.
func (r *Registry) IsUnique(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uniqueLocked(text)
}

// Register records text as accepted.
func (r *Registry) Register(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// Admit registers text if it is unique and reports whether it did.
func (r *Registry) Admit(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.uniqueLocked(text) {
		return false
	}
	r.texts = append(r.texts, text)
	return true
}

// Reset forgets every registered text.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = nil
}

// Len returns the number of registered texts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.texts)
}

// Threshold returns the rejection threshold.
func (r *Registry) Threshold() int {
	return r.threshold
}

func (r *Registry) uniqueLocked(text string) bool {
	for _, seen := range r.texts {
		if Similarity(text, seen) > r.threshold {
			return false
		}
	}
	return true
}
