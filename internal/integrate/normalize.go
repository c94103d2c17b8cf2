package integrate

import "strings"

// replacements maps English country names found in some sources to the
// Spanish names used elsewhere.
var replacements = map[string]string{
	"united states":            "estados unidos",
	"united states of america": "estados unidos",
	"usa":                      "estados unidos",
	"united kingdom":           "reino unido",
	"uk":                       "reino unido",
	"czech republic":           "república checa",
	"russia":                   "rusia",
	"vatican city":             "ciudad del vaticano",
}

// NormalizeName returns the merge key of a country name.
func NormalizeName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if r, ok := replacements[key]; ok {
		return r
	}
	return key
}
