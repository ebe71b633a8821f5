// Package classify maps station and line codes to display categories.
package classify

import "strings"

// Tag is the display category of a location or line.
type Tag string

const (
	TagNeutral  Tag = "neutral"
	TagTrunk    Tag = "trunk"    // Plaça Catalunya - Sarrià urban section
	TagTerrassa Tag = "terrassa" // S1 branch
	TagSabadell Tag = "sabadell" // S2 branch
	TagValles   Tag = "valles"   // shared Vallès section and Rubí/UAB services
	TagDepot    Tag = "depot"
)

var table = map[string]Tag{
	// Lines
	"L6":  TagTrunk,
	"L7":  TagTrunk,
	"L12": TagTrunk,
	"S1":  TagTerrassa,
	"S2":  TagSabadell,
	"S5":  TagValles,
	"S6":  TagValles,
	"S7":  TagValles,

	// Urban section
	"PC": TagTrunk,
	"PR": TagTrunk,
	"GR": TagTrunk,
	"SG": TagTrunk,
	"MN": TagTrunk,
	"BN": TagTrunk,
	"TB": TagTrunk,
	"SR": TagTrunk,
	"RE": TagTrunk,

	// Shared Vallès section
	"PF": TagValles,
	"VL": TagValles,
	"LP": TagValles,
	"LF": TagValles,
	"VD": TagValles,
	"SC": TagValles,
	"MS": TagValles,
	"HG": TagValles,
	"FN": TagValles,

	// Terrassa branch
	"TR": TagTerrassa,
	"VP": TagTerrassa,
	"EN": TagTerrassa,
	"NA": TagTerrassa,

	// Sabadell branch
	"VO": TagSabadell,
	"SJ": TagSabadell,
	"BT": TagSabadell,
	"UN": TagSabadell,
	"SQ": TagSabadell,
	"CF": TagSabadell,
	"PJ": TagSabadell,
	"CT": TagSabadell,
	"NO": TagSabadell,
	"PN": TagSabadell,

	// Depots and workshops
	"RB":  TagDepot,
	"COR": TagDepot,
	"TAL": TagDepot,
}

// Classify returns the category for a location or line code. Unknown codes
// map to TagNeutral.
func Classify(code string) Tag {
	if tag, ok := table[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return tag
	}
	return TagNeutral
}
