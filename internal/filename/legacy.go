package filename

import (
	"strings"

	"ecufiler/internal/metadata"
)

type legacyState int

const (
	inModel legacyState = iota
	modelStopped
	inECU
	ecuClosed
)

func parseLegacy(name string, rec *metadata.Filename) {
	segments := strings.Split(name, "_")
	rec.Make = strings.TrimSpace(segments[0])

	var model, ecu []string
	state := inModel
	dateSeen := false

	for _, seg := range segments[1:] {
		if seg == "" {
			continue
		}
		if !dateSeen && len(seg) == 8 && isDigits(seg) {
			rec.Date = seg
			dateSeen = true
			// Segments after the date always belong to the ECU, even when a
			// terminator already closed an ECU run before it.
			state = inECU
			continue
		}

		stop := isLegacyTerminator(seg)
		switch state {
		case inModel, modelStopped:
			if hasECUMarker(seg) {
				state = inECU
				ecu = append(ecu, seg)
				continue
			}
			if stop {
				state = modelStopped
				continue
			}
			if state == inModel {
				model = append(model, seg)
			}
		case inECU:
			if stop {
				state = ecuClosed
				continue
			}
			ecu = append(ecu, seg)
		}
	}

	rec.Model = strings.Join(model, " ")
	rec.ECU = collapseSpaces(strings.Join(ecu, " "))
	rec.ReadMethod = legacyReadMethod(strings.ToUpper(name))
}

func hasECUMarker(seg string) bool {
	for _, marker := range legacyECUMarkers {
		if strings.Contains(seg, marker) {
			return true
		}
	}
	return false
}

func isLegacyTerminator(seg string) bool {
	if _, ok := legacyStopTokens[strings.ToUpper(seg)]; ok {
		return true
	}
	lower := strings.ToLower(seg)
	for _, suffix := range unitSuffixes {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		head := lower[:len(lower)-len(suffix)]
		if head == "" || isDigits(head) {
			return true
		}
	}
	return false
}

func legacyReadMethod(upper string) metadata.ReadMethod {
	switch {
	case strings.Contains(upper, "BENCH"):
		return metadata.ReadBench
	case strings.Contains(upper, "BOOT"):
		return metadata.ReadBoot
	case strings.Contains(upper, "OBD"):
		if strings.Contains(upper, "VIRTUAL") || strings.Contains(upper, "VR") {
			return metadata.ReadVirtualOBD
		}
		return metadata.ReadNormalOBD
	}
	return metadata.ReadNone
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
