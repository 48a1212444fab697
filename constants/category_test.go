package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	cat, ok := Canonicalize(" Сквер ")
	assert.True(t, ok)
	assert.Equal(t, Square, cat)

	cat, ok = Canonicalize("bus stop")
	assert.True(t, ok)
	assert.Equal(t, BusStop, cat)

	cat, ok = Canonicalize("пешеходная зона")
	assert.False(t, ok)
	assert.Equal(t, Other, cat)

	cat, ok = Canonicalize("")
	assert.False(t, ok)
	assert.Equal(t, Other, cat)
}

func TestCanonicalizeStatus(t *testing.T) {
	st, ok := CanonicalizeStatus("на реконструкции")
	assert.True(t, ok)
	assert.Equal(t, StatusUnderReconstruction, st)

	st, ok = CanonicalizeStatus("unknown")
	assert.False(t, ok)
	assert.Equal(t, StatusActive, st)
}

func TestKeywordTablesUseClosedSets(t *testing.T) {
	cats := AsStringSlice()
	for _, kw := range DefaultCategoryKeywords {
		assert.Contains(t, cats, string(kw.Category), kw.Keyword)
	}
	statuses := StatusStrings()
	for _, kw := range DefaultStatusKeywords {
		assert.Contains(t, statuses, string(kw.Status), kw.Keyword)
	}
}
