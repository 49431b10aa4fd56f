package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ReadMethod is the display form of how a dump was obtained.
type ReadMethod string

const (
	ReadNone       ReadMethod = ""
	ReadNormalOBD  ReadMethod = "Normal Read-OBD"
	ReadVirtualOBD ReadMethod = "Virtual Read-OBD"
	ReadBench      ReadMethod = "Bench"
	ReadBoot       ReadMethod = "Boot"
)

// ReadMethods lists the selectable read methods in display order.
func ReadMethods() []ReadMethod {
	return []ReadMethod{ReadNormalOBD, ReadVirtualOBD, ReadBench, ReadBoot}
}

// ParseReadMethod accepts a display value or a short alias such as "obd",
// "virtual", "bench", or "boot".
func ParseReadMethod(value string) (ReadMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "":
		return ReadNone, nil
	case "obd", "normal", "normal read-obd":
		return ReadNormalOBD, nil
	case "virtual", "vr", "virtual read-obd":
		return ReadVirtualOBD, nil
	case "bench":
		return ReadBench, nil
	case "boot":
		return ReadBoot, nil
	}
	return ReadNone, fmt.Errorf("unknown read method %q", value)
}

// Short returns the compact form used in folder names.
func (m ReadMethod) Short() string {
	s := strings.Replace(string(m), "Normal Read-", "", 1)
	return strings.Replace(s, "Virtual Read-", "Virtual", 1)
}

// Filename is the record recovered from a dump's filename.
type Filename struct {
	Make         string     `json:"make" yaml:"make"`
	Model        string     `json:"model" yaml:"model"`
	Date         string     `json:"date" yaml:"date"`
	ECU          string     `json:"ecu" yaml:"ecu"`
	ReadMethod   ReadMethod `json:"read_method" yaml:"read_method"`
	Mileage      string     `json:"mileage" yaml:"mileage"`
	Registration string     `json:"registration" yaml:"registration"`
}

// Binary is the record recovered from a dump's contents. Fields are
// write-once during a scan; see the binscan package for the one exception.
type Binary struct {
	SWVersion     string `json:"sw_version" yaml:"sw_version"`
	BoschSWNumber string `json:"bosch_sw_number" yaml:"bosch_sw_number"`
	BoschVariant  string `json:"bosch_variant" yaml:"bosch_variant"`
	OEMHWNumber   string `json:"oem_hw_number" yaml:"oem_hw_number"`
	OEMSWNumber   string `json:"oem_sw_number" yaml:"oem_sw_number"`
	ECUType       string `json:"ecu_type" yaml:"ecu_type"`
	EngineType    string `json:"engine_type" yaml:"engine_type"`
	EngineCode    string `json:"engine_code" yaml:"engine_code"`
}

// Record is the merged filename and binary view of one dump.
type Record struct {
	Filename `yaml:",inline"`
	Binary   `yaml:",inline"`
}

// Merge combines the two partial records. A non-empty binary ECU type
// replaces the filename's ECU description.
func Merge(name Filename, bin Binary) Record {
	if bin.ECUType != "" {
		name.ECU = bin.ECUType
	}
	return Record{Filename: name, Binary: bin}
}

// Field identifies one of the record keys.
type Field string

const (
	FieldMake          Field = "make"
	FieldModel         Field = "model"
	FieldDate          Field = "date"
	FieldECU           Field = "ecu"
	FieldReadMethod    Field = "read_method"
	FieldMileage       Field = "mileage"
	FieldRegistration  Field = "registration"
	FieldSWVersion     Field = "sw_version"
	FieldBoschSWNumber Field = "bosch_sw_number"
	FieldBoschVariant  Field = "bosch_variant"
	FieldOEMHWNumber   Field = "oem_hw_number"
	FieldOEMSWNumber   Field = "oem_sw_number"
	FieldECUType       Field = "ecu_type"
	FieldEngineType    Field = "engine_type"
	FieldEngineCode    Field = "engine_code"
)

// FilenameFields lists the filename keys in display order.
var FilenameFields = []Field{
	FieldMake, FieldModel, FieldDate, FieldECU, FieldReadMethod, FieldMileage, FieldRegistration,
}

// BinaryFields lists the binary keys in display order.
var BinaryFields = []Field{
	FieldSWVersion, FieldBoschSWNumber, FieldBoschVariant, FieldOEMHWNumber,
	FieldOEMSWNumber, FieldECUType, FieldEngineType, FieldEngineCode,
}

// Fields lists every record key in display order.
func Fields() []Field {
	out := make([]Field, 0, len(FilenameFields)+len(BinaryFields))
	out = append(out, FilenameFields...)
	return append(out, BinaryFields...)
}

// Get returns the binary field value, or "" for a non-binary key.
func (b *Binary) Get(f Field) string {
	if p := b.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set stores the value unconditionally. Unknown keys are ignored.
func (b *Binary) Set(f Field, value string) {
	if p := b.slot(f); p != nil {
		*p = value
	}
}

func (b *Binary) slot(f Field) *string {
	switch f {
	case FieldSWVersion:
		return &b.SWVersion
	case FieldBoschSWNumber:
		return &b.BoschSWNumber
	case FieldBoschVariant:
		return &b.BoschVariant
	case FieldOEMHWNumber:
		return &b.OEMHWNumber
	case FieldOEMSWNumber:
		return &b.OEMSWNumber
	case FieldECUType:
		return &b.ECUType
	case FieldEngineType:
		return &b.EngineType
	case FieldEngineCode:
		return &b.EngineCode
	}
	return nil
}

// Get returns the value stored under the key.
func (r Record) Get(f Field) string {
	switch f {
	case FieldMake:
		return r.Make
	case FieldModel:
		return r.Model
	case FieldDate:
		return r.Date
	case FieldECU:
		return r.ECU
	case FieldReadMethod:
		return string(r.ReadMethod)
	case FieldMileage:
		return r.Mileage
	case FieldRegistration:
		return r.Registration
	}
	return r.Binary.Get(f)
}

// Map returns every key with its value, including empty ones.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(BinaryFields)+len(FilenameFields))
	for _, f := range Fields() {
		out[string(f)] = r.Get(f)
	}
	return out
}

// MarshalJSON flattens the record into the fifteen top-level keys.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Map())
}

// UnmarshalJSON accepts the flat form produced by MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var flat struct {
		Filename
		Binary
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	r.Filename = flat.Filename
	r.Binary = flat.Binary
	return nil
}
