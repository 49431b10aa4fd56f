package binscan

import (
	"regexp"
	"strings"

	"ecufiler/internal/metadata"
)

var (
	// CRD2-651-TMABDD11-639A4X-100kW
	delphiCRD      = regexp.MustCompile(`(CRD\d?)-(\d{3})-([A-Z0-9]+)((?:-[A-Za-z0-9]+)*)`)
	delphiPower    = regexp.MustCompile(`^\d{2,3}kW$`)
	delphiDeliv    = regexp.MustCompile(`([A-Z0-9]{6,12})_DELIV_\d`)
	delphiDelivExt = regexp.MustCompile(`_DELIV_\d_([A-Z0-9]+)_`)
	delphiHW       = bounded(`28[2-4]\d{5}`, isDigit, isDigit)
)

func scanDelphi(s *scan) {
	if all := delphiCRD.FindAllStringSubmatch(s.view, -1); len(all) > 0 {
		m := all[len(all)-1]
		s.delphi = true
		s.reset(metadata.FieldBoschSWNumber, metadata.FieldBoschVariant, metadata.FieldOEMHWNumber)
		s.fill(metadata.FieldECUType, m[1])
		s.fill(metadata.FieldEngineCode, "OM"+m[2])
		s.fill(metadata.FieldSWVersion, m[3])
		for _, part := range strings.Split(m[4], "-") {
			if delphiPower.MatchString(part) {
				s.fill(metadata.FieldEngineType, part)
				break
			}
		}
	}

	if m := delphiDeliv.FindStringSubmatch(s.view); m != nil {
		s.delphi = true
		s.fill(metadata.FieldSWVersion, m[1])
	}
	if m := delphiDelivExt.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldEngineCode, m[1])
	}

	if !s.delphi || !s.empty(metadata.FieldOEMHWNumber) {
		return
	}
	for _, loc := range delphiHW.all(s.view) {
		if hw := group(s.view, loc, 0); plausible(hw) {
			s.fill(metadata.FieldOEMHWNumber, hw)
			return
		}
	}
}
