package filename

import (
	"path/filepath"
	"strings"
)

// Dialect identifies a filename naming convention.
type Dialect int

const (
	Legacy Dialect = iota
	Flex
)

func (d Dialect) String() string {
	if d == Flex {
		return "flex"
	}
	return "legacy"
}

// DetectDialect classifies a bare name (extension already stripped). Ties
// resolve to Legacy.
func DetectDialect(name string) Dialect {
	if strings.Contains(name, "_") && !strings.Contains(name, "-") {
		return Legacy
	}
	segments := strings.Split(name, "-")
	if len(segments) < 4 {
		return Legacy
	}
	if isMake(segments[0]) {
		return Flex
	}
	if isECUBrand(segments[1]) {
		return Flex
	}
	return Legacy
}

// StripExtension drops the directory and the final extension. A dotted
// tail is only treated as an extension when it is a short alphanumeric run
// containing a letter, so names like "Audi_A4_1.9" keep their digits.
func StripExtension(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); isExtension(ext) {
		return strings.TrimSuffix(base, ext)
	}
	return base
}

const maxExtensionLen = 5

func isExtension(ext string) bool {
	if len(ext) < 2 || len(ext)-1 > maxExtensionLen {
		return false
	}
	letter := false
	for i := 1; i < len(ext); i++ {
		c := ext[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			letter = true
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return letter
}

func isMake(segment string) bool {
	_, ok := makeAliases[strings.ToLower(segment)]
	return ok
}

func isECUBrand(segment string) bool {
	_, ok := ecuBrandTokens[strings.ToLower(segment)]
	return ok
}
