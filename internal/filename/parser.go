package filename

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"ecufiler/internal/metadata"
)

const dateLayout = "20060102"

// Result is a parsed filename.
type Result struct {
	Dialect Dialect
	Record  metadata.Filename
}

// Parser normalizes filenames. The clock supplies the default date.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser using the given clock; nil means time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

var defaultParser = NewParser(nil)

// Parse normalizes a filename or path with the wall clock as default date.
func Parse(path string) Result {
	return defaultParser.Parse(path)
}

// Parse normalizes a filename or path.
func (p *Parser) Parse(path string) Result {
	name := StripExtension(path)
	dialect := DetectDialect(name)
	rec := metadata.Filename{Date: p.now().Format(dateLayout)}
	switch dialect {
	case Flex:
		parseFlex(name, &rec)
	default:
		parseLegacy(name, &rec)
	}
	return Result{Dialect: dialect, Record: rec}
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func displayMake(token string) string {
	token = strings.TrimSpace(token)
	if alias, ok := makeAliases[strings.ToLower(token)]; ok {
		return alias
	}
	return titleCase(token)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
