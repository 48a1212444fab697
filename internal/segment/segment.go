// Package segment finds the tabular region of a linearized document and cuts
// it into per-record blocks.
//
// The source tables have no end-of-record marker. A record begins where the
// start signature occurs: a line matching Start immediately followed by a
// line matching Follow. Blocks run up to the next signature, capped at
// MaxLines so that a missed signature cannot swallow the rest of the table.
package segment

import (
	"strings"

	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/extract"
)

const (
	DefaultMaxLines = 30
	DefaultMinLines = 5

	DefaultStartToken  = "Общественная территория"
	DefaultFollowToken = "г.Волгоград"
)

// Signature is the two-line start-of-record pattern.
type Signature struct {
	Start  extract.LineClassifier
	Follow extract.LineClassifier
}

// Contains matches lines containing token.
func Contains(token string) extract.ClassifierFunc {
	return func(line string) bool { return strings.Contains(line, token) }
}

func DefaultSignature() Signature {
	return Signature{Start: Contains(DefaultStartToken), Follow: Contains(DefaultFollowToken)}
}

// At reports whether the signature begins at index i.
func (s Signature) At(lines []string, i int) bool {
	return i >= 0 && i+1 < len(lines) && s.Start.Classify(lines[i]) && s.Follow.Classify(lines[i+1])
}

type Options struct {
	Signature Signature
	MaxLines  int
	MinLines  int
}

func DefaultOptions() Options {
	return Options{Signature: DefaultSignature(), MaxLines: DefaultMaxLines, MinLines: DefaultMinLines}
}

func (o Options) withDefaults() Options {
	if o.Signature.Start == nil || o.Signature.Follow == nil {
		o.Signature = DefaultSignature()
	}
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.MinLines <= 0 {
		o.MinLines = DefaultMinLines
	}
	return o
}

// Block is a contiguous run of lines attributed to one candidate record.
// Start is the index of its first line in the document.
type Block struct {
	Start int
	Lines []string
	// Capped is true when the block ended at MaxLines rather than at a signature.
	Capped bool
}

func (b Block) End() int { return b.Start + len(b.Lines) }

type Stats struct {
	Boundary     int
	Partitions   int
	Kept         int
	DroppedShort int
	Capped       int
}

// FindBoundary returns the index of the first start signature.
func FindBoundary(lines []string, sig Signature) (int, error) {
	for i := range lines {
		if sig.At(lines, i) {
			return i, nil
		}
	}
	return -1, &common.BoundaryNotFoundError{Lines: len(lines)}
}

// Partition cuts every line from the boundary onward into blocks. Each such
// line lands in exactly one block; nothing is filtered.
func Partition(lines []string, opts Options) ([]Block, int, error) {
	opts = opts.withDefaults()
	sig := opts.Signature

	boundary, err := FindBoundary(lines, sig)
	if err != nil {
		return nil, -1, err
	}

	var blocks []Block
	cur := Block{Start: boundary}
	for i := boundary; i < len(lines); i++ {
		switch {
		case i > cur.Start && sig.At(lines, i) && !(i == cur.Start+1 && sig.At(lines, cur.Start)):
			// adjacent signatures: the earlier one already opened this block
			blocks = append(blocks, cur)
			cur = Block{Start: i}
		case len(cur.Lines) == opts.MaxLines:
			cur.Capped = true
			blocks = append(blocks, cur)
			cur = Block{Start: i}
		}
		cur.Lines = append(cur.Lines, lines[i])
	}
	if len(cur.Lines) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks, boundary, nil
}

// Split partitions lines and drops blocks shorter than MinLines as noise.
func Split(lines []string, opts Options) ([]Block, Stats, error) {
	opts = opts.withDefaults()
	parts, boundary, err := Partition(lines, opts)
	if err != nil {
		return nil, Stats{Boundary: -1}, err
	}

	st := Stats{Boundary: boundary, Partitions: len(parts)}
	kept := make([]Block, 0, len(parts))
	for _, b := range parts {
		if b.Capped {
			st.Capped++
		}
		if len(b.Lines) < opts.MinLines {
			st.DroppedShort++
			continue
		}
		kept = append(kept, b)
	}
	st.Kept = len(kept)
	return kept, st, nil
}
