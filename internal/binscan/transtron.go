package binscan

import (
	"regexp"
	"strings"

	"ecufiler/internal/metadata"
)

const transtronCopyright = "Copyright(C) TRANSTRON INC."

var transtronPart = regexp.MustCompile(`([A-Z0-9]{4,6})\s{4,}z(\d{8,10})`)

func scanTranstron(s *scan) {
	if !strings.Contains(s.view, transtronCopyright) {
		return
	}
	if m := transtronPart.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldEngineCode, m[1])
		s.fill(metadata.FieldOEMSWNumber, m[2])
	}
}
