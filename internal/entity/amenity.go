package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AmenityRecord is one assembled catalog entry. It is never mutated after assembly.
type AmenityRecord struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Address        string           `json:"address"`
	District       string           `json:"district"`
	Category       string           `json:"category"`
	Status         string           `json:"status"`
	Description    string           `json:"description,omitempty"`
	Coordinates    Coordinates      `json:"coordinates"`
	Budget         *decimal.Decimal `json:"budget,omitempty"`
	Contractor     string           `json:"contractor,omitempty"`
	Customer       string           `json:"customer,omitempty"`
	StartDate      string           `json:"startDate,omitempty"`
	EndDate        string           `json:"endDate,omitempty"`
	Photos         []string         `json:"photos"`
	SourceLabel    string           `json:"sourceLabel"`
	SourceURL      string           `json:"sourceUrl,omitempty"`
	ObjectNumber   int              `json:"objectNumber,omitempty"`
	Region         string           `json:"region,omitempty"`
	StatusDetailed string           `json:"statusDetailed,omitempty"`
	AreaSqM        *decimal.Decimal `json:"areaSqM,omitempty"`
	PhotoHint      bool             `json:"photoHint"`
	MapHint        bool             `json:"mapHint"`
}

// DedupKey is the case-insensitive name+address identity used by catalog stores.
func DedupKey(name, address string) string {
	return lowerTrim(name) + "|" + lowerTrim(address)
}

// CatalogObject is a record as read back from a catalog store.
type CatalogObject struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	District string `json:"district"`
	Category string `json:"type"`
	Status   string `json:"status"`
}

// CatalogFilter narrows catalog listings. Zero values mean "any".
type CatalogFilter struct {
	Search   string
	District string
	Category string
	Status   string
	Limit    int
	Page     int
}
