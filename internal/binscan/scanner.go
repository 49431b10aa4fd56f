package binscan

import "ecufiler/internal/metadata"

// Result is the outcome of one scan. Provenance names the phase that wrote
// each non-empty field.
type Result struct {
	Record     metadata.Binary
	Provenance map[metadata.Field]string
}

// phase is one vendor extractor. It reads the view and mutates the scan
// state it is handed; state never outlives a single Scan call.
type phase struct {
	name string
	run  func(*scan)
}

var phases = []phase{
	{"bosch", scanBosch},
	{"ford", scanFord},
	{"continental", scanContinental},
	{"delphi", scanDelphi},
	{"delco", scanDelco},
	{"transtron", scanTranstron},
	{"bmw", scanBMW},
	{"mercedes", scanMercedes},
	{"generic", scanGeneric},
}

// PhaseNames lists the vendor phases in execution order.
func PhaseNames() []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.name
	}
	return names
}

type scan struct {
	view   string
	rec    metadata.Binary
	source map[metadata.Field]string
	phase  string

	// delphi is set once a CRD signature or a DELIV calibration id was seen.
	delphi bool
	// boschPath holds the submatch offsets of the firmware path string.
	boschPath []int
	// oem holds VAG-style part number matches in file order.
	oem []oemMatch
}

type oemMatch struct {
	value string
	pos   int
}

// Scan extracts identification fields from a raw dump.
func Scan(data []byte) Result {
	s := &scan{
		view:   textView(data),
		source: make(map[metadata.Field]string),
	}
	if len(s.view) > 0 {
		for _, p := range phases {
			s.phase = p.name
			p.run(s)
		}
	}
	return Result{Record: s.rec, Provenance: s.source}
}

// fill writes value into an empty field. It reports whether it wrote.
func (s *scan) fill(f metadata.Field, value string) bool {
	if value == "" || s.rec.Get(f) != "" {
		return false
	}
	s.rec.Set(f, value)
	s.source[f] = s.phase
	return true
}

func (s *scan) empty(f metadata.Field) bool {
	return s.rec.Get(f) == ""
}

// reset clears fields written by earlier phases.
func (s *scan) reset(fields ...metadata.Field) {
	for _, f := range fields {
		s.rec.Set(f, "")
		delete(s.source, f)
	}
}
