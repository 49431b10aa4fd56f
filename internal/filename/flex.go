package filename

import (
	"strings"

	"ecufiler/internal/metadata"
)

func parseFlex(name string, rec *metadata.Filename) {
	segments := strings.Split(name, "-")

	prefix := segments
	var trailing []string
	for i, seg := range segments {
		if len(seg) == 14 && strings.HasPrefix(seg, "20") && isDigits(seg) {
			rec.Date = seg[:8]
			prefix = segments[:i]
			trailing = segments[i+1:]
			break
		}
	}
	if len(prefix) == 0 {
		rec.ReadMethod = flexReadMethod(trailing)
		return
	}

	rec.Make = displayMake(prefix[0])
	rest := prefix[1:]

	brand := ""
	if len(rest) > 0 && isECUBrand(rest[0]) {
		brand = titleCase(rest[0])
		rest = rest[1:]
	}
	ecuType := ""
	if len(rest) > 0 {
		ecuType = strings.ToUpper(rest[0])
		rest = rest[1:]
	}
	rec.ECU = strings.TrimSpace(brand + " " + ecuType)

	remaining := make([]string, 0, len(rest)+len(trailing))
	remaining = append(remaining, rest...)
	remaining = append(remaining, trailing...)
	rec.ReadMethod = flexReadMethod(remaining)
}

func flexReadMethod(segments []string) metadata.ReadMethod {
	for _, seg := range segments {
		switch strings.ToLower(seg) {
		case "obd":
			return metadata.ReadNormalOBD
		case "bench":
			return metadata.ReadBench
		case "boot":
			return metadata.ReadBoot
		}
	}
	return metadata.ReadNone
}
