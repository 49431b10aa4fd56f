package binscan

import "ecufiler/internal/metadata"

var (
	mercedesPair   = bounded(`A(\d{10})[^A-Z0-9~]{0,16}A(\d{10})`, isUpperAlnum, isDigit)
	mercedesSingle = bounded(`A(\d{10})`, isUpperAlnum, isDigit)
)

// scanMercedes reads A-prefixed part numbers (hardware first, software
// second). It only runs on Delphi images.
func scanMercedes(s *scan) {
	if !s.delphi {
		return
	}
	for loc := mercedesPair.first(s.view); loc != nil; loc = mercedesPair.next(s.view, loc[0]+1) {
		hw, sw := group(s.view, loc, 1), group(s.view, loc, 2)
		if plausible(hw[1:]) && plausible(sw[1:]) {
			s.fill(metadata.FieldOEMHWNumber, "A"+hw)
			s.fill(metadata.FieldOEMSWNumber, "A"+sw)
			return
		}
	}
	if !s.empty(metadata.FieldOEMHWNumber) {
		return
	}
	for _, loc := range mercedesSingle.all(s.view) {
		if hw := group(s.view, loc, 1); plausible(hw[1:]) {
			s.fill(metadata.FieldOEMHWNumber, "A"+hw)
			return
		}
	}
}
