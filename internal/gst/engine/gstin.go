package engine

import (
	"regexp"
	"strings"
)

// 2 digit state, 10 character PAN, entity number, literal Z, checksum.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// NormalizeGSTIN upper-cases and validates a GSTIN. The state prefix must
// be a known jurisdiction. An empty input is returned as is.
func NormalizeGSTIN(raw string) (string, error) {
	gstin := strings.ToUpper(strings.TrimSpace(raw))
	if gstin == "" {
		return "", nil
	}
	if !gstinPattern.MatchString(gstin) {
		return "", ErrInvalidGSTIN
	}
	if !DefaultRegistry().Valid(gstin[:2]) {
		return "", ErrInvalidGSTIN
	}
	return gstin, nil
}
