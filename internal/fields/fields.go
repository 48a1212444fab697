// Package fields turns one record block into a sparse field map.
//
// Every field has its own strategy (an extract.FieldExtractor) that scans the
// whole block and keeps the first line it accepts. A line may serve several
// fields. Lines no strategy consumed become the residual description.
package fields

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/amenity-parser/internal/extract"
)

const (
	FieldName           = "name"
	FieldAddress        = "address"
	FieldDistrict       = "district"
	FieldCategory       = "category"
	FieldStatus         = "status"
	FieldStatusDetailed = "status_detailed"
	FieldBudget         = "budget"
	FieldDates          = "dates"
	FieldCustomer       = "customer"
	FieldContractor     = "contractor"
	FieldRegion         = "region"
	FieldArea           = "area"
	FieldPhotoHint      = "photo_hint"
	FieldMapHint        = "map_hint"
	FieldDescription    = "description"
)

// DateRange holds ISO dates. End equals Start when only one date was found.
type DateRange struct {
	Start string
	End   string
}

// FieldMap is a sparse mapping from field name to extracted value. A missing
// key means the field was not found.
type FieldMap map[string]any

func (m FieldMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

func (m FieldMap) String(field string) (string, bool) {
	s, ok := m[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func (m FieldMap) Decimal(field string) (decimal.Decimal, bool) {
	d, ok := m[field].(decimal.Decimal)
	return d, ok
}

func (m FieldMap) Bool(field string) bool {
	b, _ := m[field].(bool)
	return b
}

func (m FieldMap) Dates() (DateRange, bool) {
	d, ok := m[FieldDates].(DateRange)
	return d, ok
}

// ResidualOptions tunes the catch-all description.
type ResidualOptions struct {
	MinLength int `yaml:"min_length"`
}

// Battery runs a fixed, ordered set of field strategies over a block.
type Battery struct {
	extractors []extract.FieldExtractor
	residual   ResidualOptions
	logger     *slog.Logger
}

func NewBattery(extractors []extract.FieldExtractor, residual ResidualOptions, logger *slog.Logger) *Battery {
	if logger == nil {
		logger = slog.Default()
	}
	if residual.MinLength <= 0 {
		residual.MinLength = 5
	}
	return &Battery{extractors: extractors, residual: residual, logger: logger}
}

// DefaultBattery wires every built-in strategy with its default options.
func DefaultBattery(logger *slog.Logger) *Battery {
	return NewBattery(DefaultStrategies(), ResidualOptions{}, logger)
}

// Fields lists the fields the battery can produce, in scan order.
func (b *Battery) Fields() []string {
	out := make([]string, 0, len(b.extractors)+1)
	for _, e := range b.extractors {
		out = append(out, e.Field())
	}
	return append(out, FieldDescription)
}

// Extract never fails: absent fields are simply missing from the map.
func (b *Battery) Extract(block []string) FieldMap {
	fm := make(FieldMap, len(b.extractors)+1)
	consumed := make(map[int]bool, len(block))
	for _, e := range b.extractors {
		v, lines, ok := e.Extract(block)
		if !ok {
			continue
		}
		fm[e.Field()] = v
		for _, i := range lines {
			consumed[i] = true
		}
	}
	if desc := b.describe(block, consumed); desc != "" {
		fm[FieldDescription] = desc
	}
	b.logger.Debug("fields.extract.ok", "lines", len(block), "fields", len(fm), "consumed", len(consumed))
	return fm
}

func (b *Battery) describe(block []string, consumed map[int]bool) string {
	parts := make([]string, 0, len(block))
	for i, line := range block {
		if consumed[i] || utf8.RuneCountInString(line) <= b.residual.MinLength {
			continue
		}
		if isRegionLine(line) || strings.Contains(line, "СМР") || isNumeral(line) || isPureDate(line) {
			continue
		}
		parts = append(parts, line)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
