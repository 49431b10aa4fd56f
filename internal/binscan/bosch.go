package binscan

import (
	"regexp"

	"ecufiler/internal/metadata"
)

var (
	boschSWVariant = regexp.MustCompile(`(10[3-9]\d{7})([A-Z]\d{3}[A-Z0-9]{2,6})`)
	boschSW        = regexp.MustCompile(`10[3-9]\d{7}`)
	boschFamily    = regexp.MustCompile(`MDG1_MD1CS\d{3}|MD1CS\d{3}|EDC\d+_[A-Z]?\d+|MED\d+_[A-Z]?\d+|MEVD\d+_[A-Z]?\d+|MG1_[A-Z]{1,2}\d+`)
	// 38/1/MDG1_MD1CS001/11/P_1401//VLWT0///
	boschPath = regexp.MustCompile(`\d+/\d+/((?:MDG1|EDC17|MED17|MG1|MD1|MEVD|ME)[^~/]{2,30})/(\d+)/([^~/]{2,20})//([^~/]{0,20})/([^~/]{0,20})`)
	bosch10SW = bounded(`10SW\d{6}`, isUpperAlnum, isDigit)
	boschHW   = bounded(`02[68]1\d{6}`, isAlnum, isAlnum)
)

const (
	pathFamily = 1
	pathCalID  = 2
	pathVar    = 3
	pathPartID = 4
	pathExt    = 5
)

func scanBosch(s *scan) {
	if m := boschSWVariant.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldBoschSWNumber, m[1])
		s.fill(metadata.FieldBoschVariant, m[2])
	}
	if s.empty(metadata.FieldBoschSWNumber) {
		s.fill(metadata.FieldBoschSWNumber, boschSW.FindString(s.view))
	}
	s.fill(metadata.FieldECUType, boschFamily.FindString(s.view))

	if loc := boschPath.FindStringSubmatchIndex(s.view); loc != nil {
		s.boschPath = loc
		s.fill(metadata.FieldECUType, group(s.view, loc, pathFamily))
		if variant := group(s.view, loc, pathVar); allDigits(variant) {
			s.fill(metadata.FieldSWVersion, variant)
		}
		s.fill(metadata.FieldBoschSWNumber, group(s.view, loc, pathPartID))
	}

	if s.empty(metadata.FieldBoschSWNumber) {
		if loc := bosch10SW.first(s.view); loc != nil {
			s.fill(metadata.FieldBoschSWNumber, group(s.view, loc, 0))
		}
	}

	if boschIdentified(s) {
		if loc := boschHW.first(s.view); loc != nil {
			s.fill(metadata.FieldOEMHWNumber, group(s.view, loc, 0))
		}
	}
}

func boschIdentified(s *scan) bool {
	return !s.empty(metadata.FieldBoschSWNumber) ||
		!s.empty(metadata.FieldBoschVariant) ||
		!s.empty(metadata.FieldECUType)
}

func allDigits(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		if !isDigit(v[i]) {
			return false
		}
	}
	return true
}
