package engine

import (
	"sort"
	"strings"
	"sync"
)

// Jurisdiction is an Indian state or union territory identified by its
// two digit GST state code.
type Jurisdiction struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Registry is an immutable lookup table of jurisdictions.
type Registry struct {
	byCode  map[string]Jurisdiction
	ordered []Jurisdiction
}

var gstStates = []Jurisdiction{
	{Code: "37", Name: "Andhra Pradesh"},
	{Code: "12", Name: "Arunachal Pradesh"},
	{Code: "18", Name: "Assam"},
	{Code: "10", Name: "Bihar"},
	{Code: "22", Name: "Chhattisgarh"},
	{Code: "30", Name: "Goa"},
	{Code: "24", Name: "Gujarat"},
	{Code: "06", Name: "Haryana"},
	{Code: "02", Name: "Himachal Pradesh"},
	{Code: "20", Name: "Jharkhand"},
	{Code: "29", Name: "Karnataka"},
	{Code: "32", Name: "Kerala"},
	{Code: "23", Name: "Madhya Pradesh"},
	{Code: "27", Name: "Maharashtra"},
	{Code: "14", Name: "Manipur"},
	{Code: "17", Name: "Meghalaya"},
	{Code: "15", Name: "Mizoram"},
	{Code: "13", Name: "Nagaland"},
	{Code: "21", Name: "Odisha"},
	{Code: "03", Name: "Punjab"},
	{Code: "08", Name: "Rajasthan"},
	{Code: "11", Name: "Sikkim"},
	{Code: "33", Name: "Tamil Nadu"},
	{Code: "36", Name: "Telangana"},
	{Code: "16", Name: "Tripura"},
	{Code: "09", Name: "Uttar Pradesh"},
	{Code: "05", Name: "Uttarakhand"},
	{Code: "19", Name: "West Bengal"},
	{Code: "07", Name: "Delhi"},
	{Code: "01", Name: "Jammu and Kashmir"},
	{Code: "38", Name: "Ladakh"},
	{Code: "34", Name: "Puducherry"},
	{Code: "04", Name: "Chandigarh"},
	{Code: "26", Name: "Dadra and Nagar Haveli and Daman and Diu"},
	{Code: "31", Name: "Lakshadweep"},
	{Code: "35", Name: "Andaman and Nicobar Islands"},
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process wide table of GST state codes.
// It is built on first use and never mutated afterwards.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(gstStates)
	})
	return defaultRegistry
}

// NewRegistry builds a registry from the given entries. Later duplicates
// of a code are ignored.
func NewRegistry(entries []Jurisdiction) *Registry {
	r := &Registry{
		byCode:  make(map[string]Jurisdiction, len(entries)),
		ordered: make([]Jurisdiction, 0, len(entries)),
	}
	for _, entry := range entries {
		code := strings.TrimSpace(entry.Code)
		if _, exists := r.byCode[code]; exists {
			continue
		}
		j := Jurisdiction{Code: code, Name: strings.TrimSpace(entry.Name)}
		r.byCode[code] = j
		r.ordered = append(r.ordered, j)
	}
	sort.Slice(r.ordered, func(i, k int) bool {
		return r.ordered[i].Name < r.ordered[k].Name
	})
	return r
}

func (r *Registry) Lookup(code string) (Jurisdiction, bool) {
	if r == nil {
		return Jurisdiction{}, false
	}
	j, ok := r.byCode[code]
	return j, ok
}

// Valid reports whether code is a well formed, known state code.
func (r *Registry) Valid(code string) bool {
	if !wellFormedCode(code) {
		return false
	}
	_, ok := r.Lookup(code)
	return ok
}

// All returns a copy of the registry entries sorted by name.
func (r *Registry) All() []Jurisdiction {
	if r == nil {
		return nil
	}
	out := make([]Jurisdiction, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}

// StateCodeFromIdentifier extracts the buyer state code from a GSTIN style
// identifier. ok is false when the identifier is too short to carry one.
func StateCodeFromIdentifier(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) < 2 {
		return "", false
	}
	return identifier[:2], true
}

func wellFormedCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
