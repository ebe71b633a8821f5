// Package contact derives the internal radio/phone extension of a train unit.
package contact

import (
	"fmt"
	"strconv"
	"strings"
)

type rule struct {
	prefix string
	offset int
}

// Unit series share extension blocks: the 213 series is numbered from 51
// inside the 113 block.
var series = map[string]rule{
	"111": {prefix: "11"},
	"112": {prefix: "12"},
	"113": {prefix: "13"},
	"114": {prefix: "14"},
	"115": {prefix: "15"},
	"213": {prefix: "13", offset: 50},
}

// For returns the contact channel for a unit id of the form SERIES.NUMBER.
// The boolean is false for unknown series or malformed ids.
func For(unitID string) (string, bool) {
	s, n, ok := strings.Cut(strings.TrimSpace(unitID), ".")
	if !ok {
		return "", false
	}

	r, known := series[s]
	if !known {
		return "", false
	}

	num, err := strconv.Atoi(n)
	if err != nil || num < 0 {
		return "", false
	}

	return fmt.Sprintf("%s%02d", r.prefix, num+r.offset), true
}
