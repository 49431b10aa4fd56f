package binscan

import "ecufiler/internal/metadata"

var (
	continentalFamily = bounded(`(?:SID|EMS|SIM)\d{3,4}|PCR\d(?:\.\d)?`, isUpperAlnum, isDigit)
	continentalCalID  = bounded(`CA[RF][A-Z0-9]{5}`, isUpperAlnum, nil)
	continentalBlock  = bounded(`(CA[RF][A-Z0-9]{5}) *([0-9A-Z]{10})`, isUpperAlnum, nil)
)

func scanContinental(s *scan) {
	if loc := continentalFamily.first(s.view); loc != nil {
		s.fill(metadata.FieldECUType, group(s.view, loc, 0))
	}
	if loc := continentalCalID.first(s.view); loc != nil {
		s.fill(metadata.FieldSWVersion, group(s.view, loc, 0))
	}
	if !s.empty(metadata.FieldOEMSWNumber) {
		return
	}
	for _, loc := range continentalBlock.all(s.view) {
		packed := group(s.view, loc, 2)
		if plausible(packed[:8]) {
			s.fill(metadata.FieldOEMSWNumber, packed)
			return
		}
	}
}
