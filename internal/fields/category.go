package fields

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/joseph-ayodele/amenity-parser/constants"
)

// keywordIndex finds which of an ordered keyword list occur in a text with a
// single Aho-Corasick pass; the lowest index wins.
type keywordIndex struct {
	mu      sync.Mutex // Matcher.Match mutates internal counters
	matcher *ahocorasick.Matcher
	size    int
}

func newKeywordIndex(keywords []string) *keywordIndex {
	patterns := make([][]byte, len(keywords))
	for i, k := range keywords {
		patterns[i] = []byte(strings.ToLower(k))
	}
	return &keywordIndex{matcher: ahocorasick.NewMatcher(patterns), size: len(patterns)}
}

func (k *keywordIndex) first(text string) (int, bool) {
	if k.size == 0 {
		return -1, false
	}
	k.mu.Lock()
	hits := k.matcher.Match([]byte(strings.ToLower(text)))
	k.mu.Unlock()
	if len(hits) == 0 {
		return -1, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}
	return best, true
}

type CategoryKeywordOption struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

type CategoryOptions struct {
	Keywords []CategoryKeywordOption `yaml:"keywords"`
}

type categoryStrategy struct {
	keywords []constants.CategoryKeyword
	index    *keywordIndex
}

func NewCategoryStrategy(opts CategoryOptions) *categoryStrategy {
	kws := constants.DefaultCategoryKeywords
	if len(opts.Keywords) > 0 {
		kws = make([]constants.CategoryKeyword, len(opts.Keywords))
		for i, k := range opts.Keywords {
			cat, _ := constants.Canonicalize(k.Category)
			kws[i] = constants.CategoryKeyword{Keyword: k.Keyword, Category: cat}
		}
	}
	words := make([]string, len(kws))
	for i, k := range kws {
		words[i] = k.Keyword
	}
	return &categoryStrategy{keywords: kws, index: newKeywordIndex(words)}
}

func (s *categoryStrategy) Field() string { return FieldCategory }

// Extract reads the whole block as one text and consumes nothing.
func (s *categoryStrategy) Extract(block []string) (any, []int, bool) {
	i, ok := s.index.first(strings.Join(block, " "))
	if !ok {
		return nil, nil, false
	}
	return s.keywords[i].Category, nil, true
}

type StatusKeywordOption struct {
	Keyword string `yaml:"keyword"`
	Status  string `yaml:"status"`
}

type StatusOptions struct {
	Keywords []StatusKeywordOption `yaml:"keywords"`
}

type statusStrategy struct {
	keywords []constants.StatusKeyword
	index    *keywordIndex
}

func NewStatusStrategy(opts StatusOptions) *statusStrategy {
	kws := constants.DefaultStatusKeywords
	if len(opts.Keywords) > 0 {
		kws = make([]constants.StatusKeyword, len(opts.Keywords))
		for i, k := range opts.Keywords {
			st, _ := constants.CanonicalizeStatus(k.Status)
			kws[i] = constants.StatusKeyword{Keyword: k.Keyword, Status: st}
		}
	}
	words := make([]string, len(kws))
	for i, k := range kws {
		words[i] = k.Keyword
	}
	return &statusStrategy{keywords: kws, index: newKeywordIndex(words)}
}

func (s *statusStrategy) Field() string { return FieldStatus }

func (s *statusStrategy) Extract(block []string) (any, []int, bool) {
	for i, line := range block {
		if k, ok := s.index.first(line); ok {
			return s.keywords[k].Status, []int{i}, true
		}
	}
	return nil, nil, false
}

type detailedStatusStrategy struct {
	marker string
}

func NewDetailedStatusStrategy(marker string) *detailedStatusStrategy {
	if marker == "" {
		marker = "СМР"
	}
	return &detailedStatusStrategy{marker: marker}
}

func (s *detailedStatusStrategy) Field() string { return FieldStatusDetailed }

// Extract reports the construction phase only; callers default to "В работе".
func (s *detailedStatusStrategy) Extract(block []string) (any, []int, bool) {
	for _, line := range block {
		if strings.Contains(line, s.marker) {
			return constants.DetailedStatusConstruction, nil, true
		}
	}
	return nil, nil, false
}
