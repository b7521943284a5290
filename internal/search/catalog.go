// Package search provides a simple, deterministic, concurrency-safe in-memory
// discovery catalog over athlete profiles. It is intentionally small and
// dependency-free:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Swappable snapshot under a RWMutex (Rebuild is safe during searches)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// profile's token set: score = |Q ∩ D| / |Q ∪ D|.
package search

import (
	"sort"
	"strings"
	"sync"
)

// Result is a ranked athlete with its similarity score.
type Result struct {
	AthleteID string
	Score     float64
}

// Index is the minimal interface implemented by the catalog.
type Index interface {
	TopK(query string, k int) []Result
}

// Doc is one athlete's searchable text (name, sport, position, bio joined).
type Doc struct {
	AthleteID string
	Text      string
}

// Option configures a Catalog.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxDocs   int
}

// WithStopwords removes the given words from both documents and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the number of indexed profiles.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

type indexedDoc struct {
	id     string
	tokens map[string]struct{}
	tLen   int
}

// Catalog is a rebuildable in-memory index over athlete profiles.
type Catalog struct {
	cfg config

	mu   sync.RWMutex
	docs []indexedDoc
}

// NewCatalog constructs an empty catalog.
func NewCatalog(opts ...Option) *Catalog {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	return &Catalog{cfg: cfg}
}

// Rebuild replaces the indexed snapshot. Documents with no usable tokens are
// skipped. Safe to call while TopK runs.
func (c *Catalog) Rebuild(docs []Doc) {
	next := make([]indexedDoc, 0, len(docs))
	for _, d := range docs {
		toks := Tokenize(d.Text, c.cfg.stopwords)
		if d.AthleteID == "" || len(toks) == 0 {
			continue
		}
		next = append(next, indexedDoc{id: d.AthleteID, tokens: toks, tLen: len(toks)})
		if c.cfg.maxDocs > 0 && len(next) >= c.cfg.maxDocs {
			break
		}
	}
	c.mu.Lock()
	c.docs = next
	c.mu.Unlock()
}

// Len reports the number of indexed profiles.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// TopK returns up to k best-matching athletes by Jaccard similarity. Ties
// break on athlete ID so output order is stable across calls.
func (c *Catalog) TopK(q string, k int) []Result {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 10
	}
	qTokens := Tokenize(q, c.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	c.mu.RLock()
	defer c.mu.RUnlock()

	buf := make([]Result, 0, len(c.docs))
	for _, d := range c.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, Result{AthleteID: d.id, Score: float64(over) / union})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		return buf[a].AthleteID < buf[b].AthleteID
	})
	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k]
}

func overlap(q map[string]struct{}, d map[string]struct{}) int {
	// Iterate the smaller set.
	if len(d) < len(q) {
		q, d = d, q
	}
	n := 0
	for t := range q {
		if _, ok := d[t]; ok {
			n++
		}
	}
	return n
}
