package binscan

import "ecufiler/internal/metadata"

var (
	delcoHW  = bounded(`S\d{9}`, isUpperAlnum, isAlnum)
	delcoCal = bounded(`(\d{8})[A-Z]{2}`, isAlnum, isAlnum)
)

// scanDelco handles GM/Delco hardware and calibration numbers. Only the first
// plausible calibration number is kept.
func scanDelco(s *scan) {
	if loc := delcoHW.first(s.view); loc != nil {
		s.fill(metadata.FieldOEMHWNumber, group(s.view, loc, 0))
	}
	if !s.empty(metadata.FieldOEMSWNumber) {
		return
	}
	for _, loc := range delcoCal.all(s.view) {
		if plausible(group(s.view, loc, 1)) {
			s.fill(metadata.FieldOEMSWNumber, group(s.view, loc, 0))
			return
		}
	}
}
