package binscan

import (
	"regexp"
	"strings"

	"ecufiler/internal/metadata"
)

var (
	// 03L907309AE, 03G906021AB
	vagOEM         = bounded(`\d{2,3}[A-Z]\d{6}[A-Z]{0,3}`, isAlnum, isAlnum)
	engineFull     = regexp.MustCompile(`([RVLI]\d\s+[\d.,]+[lL]\s+\w{2,6})\s+([A-Z]{3,4})`)
	engineOnly     = regexp.MustCompile(`[RVLI]\d\s+[\d.,]+[lL]\s+[A-Z]{2,6}`)
	vagEngineCode  = bounded(`([A-Z]{4})[ _-]?J623`, isUpperAlnum, nil)
	psaMarker      = bounded(`PSA`, isUpperAlnum, isUpperAlnum)
	psaPart        = bounded(`9[68]\d{8}`, isDigit, isDigit)
	hexCalibration = regexp.MustCompile(`\.HEX[^A-Z0-9~]{0,8}([0-9A-Z]{8,12})`)
)

// psaWindow is how far past the PSA marker part numbers are searched.
const psaWindow = 256

func scanGeneric(s *scan) {
	scanVAGNumbers(s)
	scanEngine(s)

	if loc := vagEngineCode.first(s.view); loc != nil {
		s.fill(metadata.FieldEngineCode, group(s.view, loc, 1))
	}

	scanPSA(s)

	if s.boschPath != nil {
		if ext := group(s.view, s.boschPath, pathExt); isAlnumString(ext) && plausible(ext) {
			s.fill(metadata.FieldOEMSWNumber, ext)
		}
	}

	if m := hexCalibration.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldOEMSWNumber, m[1])
	}

	if s.empty(metadata.FieldSWVersion) {
		s.fill(metadata.FieldSWVersion, findSWVersion(s.view, s.oem))
	}
}

// scanVAGNumbers buckets VAG part numbers: "907" marks hardware, "906"
// software, anything else fills hardware then software in file order.
func scanVAGNumbers(s *scan) {
	var hw, sw []string
	for _, loc := range vagOEM.all(s.view) {
		value := group(s.view, loc, 0)
		s.oem = append(s.oem, oemMatch{value: value, pos: loc[0]})
		switch {
		case strings.Contains(value, "907"):
			hw = append(hw, value)
		case strings.Contains(value, "906"):
			sw = append(sw, value)
		case len(hw) == 0:
			hw = append(hw, value)
		case len(sw) == 0:
			sw = append(sw, value)
		}
	}
	if len(hw) > 0 {
		s.fill(metadata.FieldOEMHWNumber, hw[0])
	}
	if len(sw) > 0 {
		s.fill(metadata.FieldOEMSWNumber, sw[0])
	}
}

// scanEngine reads descriptors such as "R4 2.0l TDI  CFFB".
func scanEngine(s *scan) {
	if m := engineFull.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldEngineType, m[1])
		s.fill(metadata.FieldEngineCode, m[2])
	}
	if s.empty(metadata.FieldEngineType) {
		s.fill(metadata.FieldEngineType, engineOnly.FindString(s.view))
	}
}

func scanPSA(s *scan) {
	marker := psaMarker.first(s.view)
	if marker == nil {
		return
	}
	end := min(marker[1]+psaWindow, len(s.view))
	window := s.view[marker[1]:end]
	loc := psaPart.first(window)
	if loc == nil {
		return
	}
	part := group(window, loc, 0)
	if !s.fill(metadata.FieldOEMHWNumber, part) {
		s.fill(metadata.FieldOEMSWNumber, part)
	}
}

func isAlnumString(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !isAlnum(v[i]) {
			return false
		}
	}
	return true
}
