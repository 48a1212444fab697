package assemble

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/amenity-parser/constants"
	"github.com/joseph-ayodele/amenity-parser/internal/common"
	"github.com/joseph-ayodele/amenity-parser/internal/entity"
	"github.com/joseph-ayodele/amenity-parser/internal/fields"
)

const (
	DefaultAddress = "Адрес не указан"
	DefaultRegion  = "г.Волгоград"

	MaxNameLength        = 200
	MaxDescriptionLength = 2000
)

// Config holds assembly defaults.
type Config struct {
	// DefaultDistrict is used when neither the district column nor the text
	// names one. Anything outside the closed set means "Не указан".
	DefaultDistrict string
}

type Assembler struct {
	defaultDistrict constants.District
	logger          *slog.Logger
}

func NewAssembler(cfg Config, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{defaultDistrict: constants.NormalizeDistrict(cfg.DefaultDistrict), logger: logger}
}

// Assemble turns a field map into a record. seq is the block's 1-based
// position in its document. A block without a usable name is rejected with
// *common.RejectedError; every other missing field gets a default.
func (a *Assembler) Assemble(fm fields.FieldMap, src entity.SourceDocument, seq int) (entity.AmenityRecord, error) {
	name, _ := fm.String(fields.FieldName)
	name = common.TruncateRunes(fields.CleanName(name), MaxNameLength)
	if name == "" {
		a.logger.Debug("assemble.rejected", "doc", src.Label(), "block", seq, "reason", "no name")
		return entity.AmenityRecord{}, &common.RejectedError{Reason: "name is missing", Block: seq}
	}

	description, _ := fm.String(fields.FieldDescription)
	description = common.TruncateRunes(description, MaxDescriptionLength)

	district := a.district(fm, description)
	lat, lng := constants.DistrictCoordinates(district)

	rec := entity.AmenityRecord{
		ID:             uuid.New(),
		Name:           name,
		Address:        stringOr(fm, fields.FieldAddress, DefaultAddress),
		District:       string(district),
		Category:       string(category(fm)),
		Status:         string(status(fm)),
		Description:    description,
		Coordinates:    entity.Coordinates{Lat: lat, Lng: lng},
		Contractor:     stringOr(fm, fields.FieldContractor, ""),
		Customer:       stringOr(fm, fields.FieldCustomer, ""),
		Photos:         []string{},
		SourceLabel:    src.Label(),
		SourceURL:      src.URL,
		ObjectNumber:   seq,
		Region:         stringOr(fm, fields.FieldRegion, DefaultRegion),
		StatusDetailed: stringOr(fm, fields.FieldStatusDetailed, constants.DetailedStatusInProgress),
		PhotoHint:      fm.Bool(fields.FieldPhotoHint),
		MapHint:        fm.Bool(fields.FieldMapHint),
	}
	if b, ok := fm.Decimal(fields.FieldBudget); ok {
		rec.Budget = &b
	}
	if area, ok := fm.Decimal(fields.FieldArea); ok {
		rec.AreaSqM = &area
	}
	if d, ok := fm.Dates(); ok {
		rec.StartDate, rec.EndDate = d.Start, d.End
	}

	v := common.NewValidator().
		Field("id", rec.ID, common.UUID).
		Field("name", rec.Name, common.Required, common.MaxLength(MaxNameLength)).
		Field("description", rec.Description, common.MaxLength(MaxDescriptionLength)).
		Field("category", rec.Category, common.OneOf(constants.AsStringSlice()...)).
		Field("status", rec.Status, common.OneOf(constants.StatusStrings()...)).
		Field("coordinates", [2]float64{lat, lng}, common.LatLng)
	if v.HasErrors() {
		a.logger.Warn("assemble.invalid", "doc", src.Label(), "block", seq, "err", v.ErrorMessage())
		return entity.AmenityRecord{}, &common.RejectedError{Reason: v.ErrorMessage(), Block: seq}
	}
	return rec, nil
}

// district prefers the district column, then "<name> район" phrasing in the
// description, then the configured default.
func (a *Assembler) district(fm fields.FieldMap, description string) constants.District {
	if raw, ok := fm.String(fields.FieldDistrict); ok {
		if d := constants.NormalizeDistrict(raw); d.Known() {
			return d
		}
	}
	if d, ok := fields.DistrictFromText(description); ok {
		return d
	}
	return a.defaultDistrict
}

func category(fm fields.FieldMap) constants.Category {
	switch v := fm[fields.FieldCategory].(type) {
	case constants.Category:
		c, _ := constants.Canonicalize(string(v))
		return c
	case string:
		c, _ := constants.Canonicalize(v)
		return c
	}
	return constants.Other
}

func status(fm fields.FieldMap) constants.Status {
	switch v := fm[fields.FieldStatus].(type) {
	case constants.Status:
		s, _ := constants.CanonicalizeStatus(string(v))
		return s
	case string:
		s, _ := constants.CanonicalizeStatus(v)
		return s
	}
	return constants.StatusActive
}

func stringOr(fm fields.FieldMap, field, def string) string {
	if s, ok := fm.String(field); ok {
		return strings.TrimSpace(s)
	}
	return def
}
