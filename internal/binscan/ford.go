package binscan

import (
	"regexp"
	"strings"

	"ecufiler/internal/metadata"
)

var (
	fordPart        = bounded(`[A-Z0-9]{4}-([A-Z0-9]{5,6})-[A-Z]{2,3}`, isUpperAlnum, isUpperAlnum)
	fordCalibration = regexp.MustCompile(`Ford Motor Co\.\s*\d{4}([A-Z]{2}[A-Z0-9]{4}-[A-Z0-9]{5,6}-[A-Z]{2})`)
)

// scanFord buckets AAAA-AAAAA(A)-AA(A) part numbers. A "C" within the first
// three characters of the middle segment marks a hardware number.
func scanFord(s *scan) {
	var hw, sw []string
	for _, loc := range fordPart.all(s.view) {
		part := group(s.view, loc, 0)
		middle := group(s.view, loc, 1)
		if strings.Contains(middle[:3], "C") {
			hw = append(hw, part)
		} else {
			sw = append(sw, part)
		}
	}
	if len(hw) > 0 {
		s.fill(metadata.FieldOEMHWNumber, hw[0])
	}
	if len(sw) > 0 {
		s.fill(metadata.FieldOEMSWNumber, sw[0])
		s.fill(metadata.FieldSWVersion, sw[0])
	}

	// The calibration id has no field of its own and borrows the Bosch slot.
	if m := fordCalibration.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldBoschSWNumber, m[1])
	}
}
