package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ecufiler/internal/metadata"
	"ecufiler/internal/textutil"
)

const ruleWidth = 70

var (
	doubleRule = strings.Repeat("=", ruleWidth)
	singleRule = strings.Repeat("-", ruleWidth)
)

// appendSessionLog writes the folder header on first use and then one
// SESSION block describing the filed dump.
func (o *Organizer) appendSessionLog(res *Result, req Request) (string, error) {
	logPath := filepath.Join(res.DestDir, o.cfg.Organizer.LogFileName)
	_, statErr := os.Stat(logPath)
	isNew := errors.Is(statErr, os.ErrNotExist)
	if statErr != nil && !isNew {
		return "", statErr
	}

	var b strings.Builder
	rec := req.Record
	if isNew {
		fmt.Fprintf(&b, "ECU File Organization Log\n%s\n\n", doubleRule)
		fmt.Fprintf(&b, "Vehicle: %s %s | Registration: %s\n", rec.Make, rec.Model, rec.Registration)
		fmt.Fprintf(&b, "Folder: %s\n\n%s\n\n", filepath.Base(res.DestDir), doubleRule)
	} else {
		fmt.Fprintf(&b, "\n%s\n\n", doubleRule)
	}
	writeSession(&b, o.now().Format("2006-01-02 15:04:05"), res, rec, req.SessionID)

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	f, err := os.OpenFile(logPath, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return "", err
	}
	return logPath, f.Close()
}

func writeSession(b *strings.Builder, stamp string, res *Result, rec metadata.Record, sessionID string) {
	fmt.Fprintf(b, "SESSION %s\n%s\n\n", stamp, singleRule)
	fmt.Fprintf(b, "File: %s\n", filepath.Base(res.DestPath))
	fmt.Fprintf(b, "Size: %.2f MB (%s bytes)\n\n", float64(res.Size)/(1024*1024), humanize.Comma(res.Size))

	b.WriteString("Vehicle Information:\n")
	writeField(b, "Make", rec.Make)
	writeField(b, "Model", rec.Model)
	writeField(b, "Date", rec.Date)
	writeField(b, "ECU Type", rec.ECU)
	writeField(b, "Read Method", string(rec.ReadMethod))
	writeField(b, "Mileage", textutil.Ternary(rec.Mileage != "", rec.Mileage+" km", ""))
	writeField(b, "Registration", rec.Registration)

	var ident []metadata.Field
	for _, f := range metadata.BinaryFields {
		if rec.Get(f) != "" {
			ident = append(ident, f)
		}
	}
	if len(ident) > 0 {
		b.WriteString("\nBinary Identification:\n")
		for _, f := range ident {
			writeField(b, binaryLabels[f], rec.Get(f))
		}
	}

	fmt.Fprintf(b, "\nFull Path: %s\n", res.DestPath)
	if res.Reused {
		b.WriteString("Added to existing registration folder\n")
	}
	if sessionID != "" {
		fmt.Fprintf(b, "Session ID: %s\n", sessionID)
	}
	b.WriteString("\nOrganized by ecufiler\n")
}

func writeField(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %-16s%s\n", label+":", value)
}

var binaryLabels = map[metadata.Field]string{
	metadata.FieldSWVersion:     "SW Version",
	metadata.FieldBoschSWNumber: "Bosch SW",
	metadata.FieldBoschVariant:  "Bosch Variant",
	metadata.FieldOEMHWNumber:   "OEM HW",
	metadata.FieldOEMSWNumber:   "OEM SW",
	metadata.FieldECUType:       "ECU Family",
	metadata.FieldEngineType:    "Engine",
	metadata.FieldEngineCode:    "Engine Code",
}
