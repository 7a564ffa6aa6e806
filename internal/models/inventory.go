package models

import "time"

type Intent int

const (
	IntentFreeText Intent = iota
	IntentLowStock
	IntentExpiryCutoff
	IntentProductCode
)

func (i Intent) String() string {
	switch i {
	case IntentFreeText:
		return "free_text"
	case IntentLowStock:
		return "low_stock"
	case IntentExpiryCutoff:
		return "expiry_cutoff"
	case IntentProductCode:
		return "product_code"
	default:
		return "unknown"
	}
}

type Scope int

const (
	ScopeDefault Scope = iota
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "klc1"
}

// RawRow is one stock table row exactly as the upstream store returns it.
// Headers are untrusted: mixed language, diacritics and casing vary per export.
type RawRow = map[string]any

// Record is the canonical, immutable view of one RawRow. It is built once
// during snapshot ingestion; the normalized fields are precomputed so the
// resolution strategies never re-fold strings per request.
type Record struct {
	SKU           string
	ExternalCode  string // secondary identifier (IDH), empty when absent
	Name          string
	Barcode       string
	BarcodeTokens []string // normalized, split on comma/whitespace
	Warehouse     string   // site code, uppercased
	Unit          string   // defaults to "vnt"
	Expiry        string   // ISO YYYY-MM-DD, empty when absent or unparsable
	StockTotal    float64
	Reserved      float64
	Available     float64

	SKUNorm      string
	NameNorm     string
	ExternalNorm string

	Raw RawRow
}

// Query is the classified form of a raw search term.
type Query struct {
	Raw       string
	Core      string // noise-stripped, folded term
	Norm      string // lower-cased Core
	Intent    Intent
	Scope     Scope
	Threshold float64 // low-stock only
	Inclusive bool    // low-stock: true for <=
	Cutoff    string  // expiry-cutoff only, ISO date
	Title     string  // header title override, empty for plain searches
}

type QueryRequest struct {
	Term    string `json:"term"`
	View    string `json:"view,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Cursor  int    `json:"cursor,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

type PackageGroup struct {
	SKU            string  `json:"sku"`
	ExternalCode   string  `json:"idh,omitempty"`
	Package        string  `json:"package"`
	Unit           string  `json:"unit"`
	Name           string  `json:"name"`
	TotalAvailable float64 `json:"total_available"`
	TotalReserved  float64 `json:"total_reserved"`
	TotalStock     float64 `json:"total_stock"`
}

type ExpiryGroup struct {
	Package      string  `json:"package"`
	Expiry       string  `json:"expiry,omitempty"`
	Unit         string  `json:"unit"`
	QtyAvailable float64 `json:"qty_available"`
	QtyReserved  float64 `json:"qty_reserved"`
	QtyTotal     float64 `json:"qty_total"`
	Expired      bool    `json:"expired"`
	ExpiryLabel  string  `json:"expiry_label"`
}

type Totals struct {
	TotalAvailable float64 `json:"total_available"`
	TotalReserved  float64 `json:"total_reserved"`
	TotalStock     float64 `json:"total_stock"`
	UnitHint       string  `json:"unit_hint"`
}

type Header struct {
	NameHint       string  `json:"name_hint"`
	Unit           string  `json:"unit"`
	Scope          string  `json:"scope"`
	TotalAvailable float64 `json:"total_available"`
	TotalReserved  float64 `json:"total_reserved,omitempty"`
	TotalStock     float64 `json:"total_stock,omitempty"`
}

type Page struct {
	Cursor     int  `json:"cursor"`
	Limit      int  `json:"limit"`
	NextCursor *int `json:"nextCursor"`
	Total      int  `json:"total"`
}

type RawBlock struct {
	Total   int      `json:"total"`
	Rows    []RawRow `json:"rows"`
	AllRows []RawRow `json:"all_rows"`
}

type Meta struct {
	Term        string  `json:"term"`
	View        string  `json:"view"`
	Scope       string  `json:"scope"`
	Intent      string  `json:"intent"`
	Refresh     bool    `json:"refresh"`
	CacheAgeMs  int64   `json:"cache_age_ms"`
	GeneratedMs float64 `json:"generated_ms"`
	RequestID   string  `json:"request_id,omitempty"`
	CacheHit    bool    `json:"cache_hit,omitempty"`
}

type QueryResponse struct {
	Kind   string    `json:"kind"` // "packages" | "expiry"
	Items  any       `json:"items"`
	Totals *Totals   `json:"totals,omitempty"`
	Header Header    `json:"header"`
	Page   Page      `json:"page"`
	Raw    *RawBlock `json:"raw,omitempty"`
	Meta   Meta      `json:"meta"`
}

// SnapshotInfo describes the currently cached row set.
type SnapshotInfo struct {
	Rows      int       `json:"rows"`
	FetchedAt time.Time `json:"fetched_at"`
}
