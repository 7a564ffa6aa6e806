// Package schema maps the stock table's inconsistent, bilingual headers onto
// canonical semantic fields and builds immutable records from raw rows.
package schema

import (
	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/textnorm"
)

// Field is one semantic column with its accepted header spellings, in
// priority order. The lists mirror the spellings seen in real exports:
// Lithuanian with and without diacritics, plus the English import aliases.
type Field struct {
	Name     string
	variants []string
}

var (
	FieldSKU          = Field{"sku", []string{"Prekes Nr.", "Prekės Nr.", "product_code", "SKU", "Kodas"}}
	FieldName         = Field{"name", []string{"Prekes pavadinimas", "Prekės pavadinimas", "product_name", "Pavadinimas", "Name"}}
	FieldExternalCode = Field{"external_code", []string{"Isorinis prekes numeris", "Išorinis prekės numeris", "external_code", "IDH"}}
	FieldBarcode      = Field{"barcode", []string{"Bruksninis kodas", "Brūkšninis kodas", "barcode", "EAN"}}
	FieldWarehouse    = Field{"warehouse", []string{"Sandelis", "Sandėlis", "warehouse"}}
	FieldExpiry       = Field{"expiry", []string{"Galiojimo data", "expiry_date", "BBF"}}
	FieldLot          = Field{"lot", []string{"LOT", "Partija"}}
	FieldPackageNo    = Field{"package_no", []string{"Paketo numeris", "Package No"}}
	FieldLocation     = Field{"location", []string{"Vieta", "Lokacija", "Rack"}}
	FieldPalletNo     = Field{"pallet_no", []string{"Padeklo Nr.", "Padėklo Nr.", "Pallet No"}}
	FieldStatus       = Field{"status", []string{"Busena", "Būsena", "status"}}
	FieldLocationType = Field{"location_type", []string{"Vietos tipas", "Location Type"}}
	FieldUnit         = Field{"unit", []string{"Vienetas", "Unit", "vnt", "kg", "l"}}
	FieldStockTotal   = Field{"stock_total", []string{"Faktines atsargos", "Faktinės atsargos", "stock_total"}}
	FieldReserved     = Field{"reserved", []string{"Faktiskai rezervuota", "Faktiškai rezervuota", "reserved"}}
	FieldAvailable    = Field{"available", []string{"Faktiskai turima", "Faktiškai turima", "available"}}
)

// HeaderMap maps a normalized header name to the actual key present on one
// row. Row shapes differ between exports, so the map is computed per row.
type HeaderMap map[string]string

// ResolveHeaders indexes a row's keys by their normalized form. The raw row
// is never mutated; the map is attached to the canonical record instead.
func ResolveHeaders(row models.RawRow) HeaderMap {
	hm := make(HeaderMap, len(row))
	for key := range row {
		nk := textnorm.Norm(key)
		if _, taken := hm[nk]; !taken {
			hm[nk] = key
		}
	}
	return hm
}

// Lookup returns the value of the first header variant present on the row.
// Matching is case/diacritic/whitespace-insensitive on the header name only;
// the value itself is returned untouched.
func (f Field) Lookup(row models.RawRow, hm HeaderMap) (any, bool) {
	for _, want := range f.variants {
		if actual, ok := hm[textnorm.Norm(want)]; ok {
			return row[actual], true
		}
	}
	return nil, false
}
