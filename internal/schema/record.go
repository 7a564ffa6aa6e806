package schema

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/textnorm"
)

const defaultUnit = "vnt"

var barcodeSep = regexp.MustCompile(`[,\s]+`)

// AsString renders a raw cell value for canonical use. Numbers are formatted
// without exponent notation since SKUs and barcodes sometimes arrive numeric.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format("2006-01-02")
	default:
		return ""
	}
}

// AsNumber parses locale-formatted decimals (comma as decimal separator).
// Unparsable or absent values degrade to 0 so one malformed cell never fails
// a request.
func AsNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	s := strings.TrimSpace(AsString(v))
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}

var expiryLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// AsExpiry parses a cell into an ISO YYYY-MM-DD date. Anything unparsable
// yields the empty string, never an error.
func AsExpiry(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format("2006-01-02")
	}
	s := strings.TrimSpace(AsString(v))
	if s == "" {
		return ""
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

func barcodeTokens(raw string) []string {
	parts := barcodeSep.Split(raw, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := textnorm.Norm(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// BuildRecord derives the canonical record for one raw row. It is called
// once per row during snapshot ingestion; the result is immutable afterwards.
func BuildRecord(row models.RawRow) models.Record {
	hm := ResolveHeaders(row)

	str := func(f Field) string {
		v, ok := f.Lookup(row, hm)
		if !ok {
			return ""
		}
		return AsString(v)
	}
	num := func(f Field) float64 {
		v, ok := f.Lookup(row, hm)
		if !ok {
			return 0
		}
		return AsNumber(v)
	}

	unit := str(FieldUnit)
	if unit == "" {
		unit = defaultUnit
	}

	expiry := ""
	if v, ok := FieldExpiry.Lookup(row, hm); ok {
		expiry = AsExpiry(v)
	}

	rec := models.Record{
		SKU:          str(FieldSKU),
		ExternalCode: str(FieldExternalCode),
		Name:         str(FieldName),
		Barcode:      str(FieldBarcode),
		Warehouse:    strings.ToUpper(str(FieldWarehouse)),
		Unit:         unit,
		Expiry:       expiry,
		StockTotal:   num(FieldStockTotal),
		Reserved:     num(FieldReserved),
		Available:    num(FieldAvailable),
		Raw:          row,
	}
	rec.BarcodeTokens = barcodeTokens(rec.Barcode)
	rec.SKUNorm = textnorm.Norm(rec.SKU)
	rec.NameNorm = textnorm.Norm(rec.Name)
	rec.ExternalNorm = textnorm.Norm(rec.ExternalCode)
	return rec
}

// BuildRecords maps a whole raw snapshot.
func BuildRecords(rows []models.RawRow) []models.Record {
	records := make([]models.Record, len(rows))
	for i, row := range rows {
		records[i] = BuildRecord(row)
	}
	return records
}
