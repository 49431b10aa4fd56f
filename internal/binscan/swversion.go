package binscan

import (
	"strconv"
	"strings"
)

const (
	swWindowBefore = 2048
	swWindowAfter  = 4096
)

var swCandidate = bounded(`\d{4,5}`, isAlnum, isAlnum)

// findSWVersion looks for a standalone 4-5 digit number around the first
// OEM part number. Candidates that are part of an OEM number, start with a
// zero, are multiples of 1000, or are below 1000 are skipped.
func findSWVersion(view string, oem []oemMatch) string {
	if len(oem) == 0 {
		return ""
	}
	anchor := oem[0].pos
	start := max(0, anchor-swWindowBefore)
	end := min(len(view), anchor+swWindowAfter)
	region := view[start:end]

	for _, loc := range swCandidate.all(region) {
		val := group(region, loc, 0)
		if aliasesOEM(val, oem) || val[0] == '0' {
			continue
		}
		num, err := strconv.Atoi(val)
		if err != nil || num%1000 == 0 || num < 1000 {
			continue
		}
		return val
	}
	return ""
}

func aliasesOEM(val string, oem []oemMatch) bool {
	for _, m := range oem {
		if strings.Contains(m.value, val) {
			return true
		}
	}
	return false
}
