package aggregate

import (
	"regexp"
	"strconv"
	"strings"
)

// sizeToken matches a package-size token inside a product name: a number
// with an optional comma or dot decimal, optional space, then a unit.
var sizeToken = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(ML|L|KG|G)\b`)

// PackageSize extracts the normalized "<quantity> <unit>" token from a
// product name ("LOLA 250 ML" -> "250 ml", "XYZ 1,5L" -> "1.5 l"). Names
// without a recognizable token fall back to the record's unit.
func PackageSize(name, fallbackUnit string) string {
	m := sizeToken.FindStringSubmatch(strings.ToUpper(name))
	if m == nil {
		return fallbackUnit
	}
	qty := strings.ReplaceAll(m[1], ",", ".")
	return qty + " " + strings.ToLower(m[2])
}

// sizeMagnitude parses the numeric part of a package-size string for
// sorting. Sizes without a leading number sort as 0 and fall back to the
// lexicographic tie-break.
func sizeMagnitude(pkg string) float64 {
	fields := strings.Fields(pkg)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return n
}
