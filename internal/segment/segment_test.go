package segment

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
)

func record(name string, extra int) []string {
	out := []string{"Общественная территория, " + name, "г.Волгоград"}
	for i := 0; i < extra; i++ {
		out = append(out, fmt.Sprintf("%s строка %d", name, i))
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestFindBoundary(t *testing.T) {
	lines := concat([]string{"Перечень объектов", "2024"}, record("сквер", 4))
	idx, err := FindBoundary(lines, DefaultSignature())
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestSplitNoBoundary(t *testing.T) {
	lines := []string{"Общественная территория", "г.Волжский", "г.Волгоград", "Общественная территория"}
	blocks, st, err := Split(lines, DefaultOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBoundaryNotFound)
	var bnf *common.BoundaryNotFoundError
	require.ErrorAs(t, err, &bnf)
	assert.Equal(t, 4, bnf.Lines)
	assert.Empty(t, blocks)
	assert.Equal(t, -1, st.Boundary)
}

func TestSplitDropsShortBlock(t *testing.T) {
	// first signature has only 3 lines before the second one
	lines := concat(record("сквер", 1), record("парк", 6))
	blocks, st, err := Split(lines, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].Start)
	assert.Equal(t, "Общественная территория, парк", blocks[0].Lines[0])
	assert.Len(t, blocks[0].Lines, 8)
	assert.Equal(t, 1, st.DroppedShort)
	assert.Equal(t, 2, st.Partitions)
}

func TestSplitCapsRunawayBlocks(t *testing.T) {
	lines := record("набережная", 70) // 72 lines, one signature
	parts, _, err := Partition(lines, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Len(t, parts[0].Lines, 30)
	assert.True(t, parts[0].Capped)
	assert.Len(t, parts[1].Lines, 30)
	assert.Len(t, parts[2].Lines, 12)
	assert.False(t, parts[2].Capped)

	opts := DefaultOptions()
	opts.MaxLines = 10
	opts.MinLines = 3
	blocks, st, err := Split(record("сквер", 10), opts)
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
	assert.Equal(t, 1, st.DroppedShort) // trailing 2-line remainder
	assert.Equal(t, 1, st.Capped)
}

func TestSplitAdjacentSignaturesEarlierWins(t *testing.T) {
	// line 1 is both the Follow of line 0 and the Start of a signature ending at line 2
	lines := []string{
		"Общественная территория",
		"Общественная территория г.Волгоград",
		"г.Волгоград",
		"сквер по ул. Мира",
		"Центральный район",
		"ООО СтройГруп",
	}
	blocks, st, err := Split(lines, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 0, blocks[0].Start)
	assert.Len(t, blocks[0].Lines, 6)
	assert.Zero(t, st.DroppedShort)
}

func TestPartitionCoversEveryLineOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{
		"Общественная территория", "г.Волгоград", "сквер", "59,00", "15.01.2024",
		"ООО СтройГруп", "Центральный район", "по ул. Мира",
	}
	for n := 0; n < 300; n++ {
		size := 2 + rng.Intn(120)
		lines := make([]string, size)
		for i := range lines {
			lines[i] = pool[rng.Intn(len(pool))]
		}
		parts, boundary, err := Partition(lines, DefaultOptions())
		if err != nil {
			assert.ErrorIs(t, err, common.ErrBoundaryNotFound)
			continue
		}
		next := boundary
		for _, p := range parts {
			require.Equal(t, next, p.Start, "gap or overlap at %d", next)
			require.NotEmpty(t, p.Lines)
			require.LessOrEqual(t, len(p.Lines), DefaultMaxLines)
			assert.Equal(t, lines[p.Start:p.End()], p.Lines)
			next = p.End()
		}
		require.Equal(t, len(lines), next)
	}
}
