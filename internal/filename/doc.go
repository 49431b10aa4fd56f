// Package filename turns dump filenames into metadata.Filename records.
//
// Two naming dialects are recognized. Legacy names are underscore-delimited
// (Make_Model_..._Brand_Type_..._OBD_NR.bin) and are parsed with a small
// model/ECU state machine. Flex names are hyphen-delimited
// (make-ecubrand-ecutype-YYYYMMDDhhmmss-method.bin) and carry a timestamp.
// The dialect is chosen once per name by DetectDialect; parsing never fails
// and always returns a record with every field present.
package filename
