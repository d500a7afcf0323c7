package dedup

import "strings"

// Outlet authority ranks, used to pick the surviving article when two
// different sources report the same story. Higher wins.
var authorityScores = map[string]int{
	"bbc news":         9,
	"bbc sport":        9,
	"reuters":          9,
	"associated press": 9,
	"the guardian":     8,
	"al jazeera":       8,
	"cnn":              7,
	"sky news":         7,
	"nation":           8,
	"daily nation":     8,
	"the standard":     7,
	"standard digital": 7,
	"the star":         6,
	"capital fm":       6,
	"citizen digital":  6,
	"the east african": 7,
	"business daily":   6,
	"tuko":             4,
	"kenyans.co.ke":    4,
	"google news":      5,
	"pulselive kenya":  4,
}

// DefaultAuthority is assigned to outlets missing from the table.
const DefaultAuthority = 3

// Authority returns the trust rank for an outlet display name.
func Authority(source string) int {
	if score, ok := authorityScores[strings.ToLower(strings.TrimSpace(source))]; ok {
		return score
	}
	return DefaultAuthority
}
