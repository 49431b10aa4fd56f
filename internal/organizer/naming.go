package organizer

import (
	"strings"

	"ecufiler/internal/metadata"
	"ecufiler/internal/textutil"
)

// FolderName builds {make}_{model}_{date}_{ecu}_{read}, followed by
// _{mileage}km and _{registration} when those are known. Empty middle
// segments are kept so the position of each field stays fixed.
func FolderName(rec metadata.Record) string {
	parts := []string{
		makeSegment(rec.Make),
		textutil.SanitizeSegment(rec.Model),
		textutil.SanitizeFileName(rec.Date),
		textutil.SanitizeSegment(rec.ECU),
		textutil.SanitizeFileName(rec.ReadMethod.Short()),
	}
	name := strings.Join(parts, "_")
	if mileage := textutil.SanitizeFileName(rec.Mileage); mileage != "" {
		name += "_" + mileage + "km"
	}
	if reg := registrationSegment(rec.Registration); reg != "" {
		name += "_" + reg
	}
	return name
}

// makeSegment keeps spaces so that "Land Rover" stays readable as a
// directory name.
func makeSegment(value string) string {
	return textutil.SanitizeFileName(value)
}

func registrationSegment(value string) string {
	return textutil.SanitizeSegment(value)
}

// withTimeSuffix inserts _{stamp} before the file extension.
func withTimeSuffix(name, stamp string) string {
	ext := ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		ext = name[idx:]
		name = name[:idx]
	}
	return name + "_" + stamp + ext
}
