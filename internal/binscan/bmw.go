package binscan

import (
	"regexp"

	"ecufiler/internal/metadata"
)

// #B47D20O0-F30: engine code, then chassis code.
var bmwEngine = regexp.MustCompile(`#([A-Z]\d{2}[A-Z0-9]{0,5})-[A-Z]\d{2}`)

func scanBMW(s *scan) {
	if m := bmwEngine.FindStringSubmatch(s.view); m != nil {
		s.fill(metadata.FieldEngineCode, m[1])
	}
}
