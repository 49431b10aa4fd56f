package binscan

import "regexp"

// placeholder replaces every non-printable byte in the text view.
const placeholder = '~'

// textView maps bytes 1:1 onto printable ASCII.
func textView(data []byte) string {
	buf := make([]byte, len(data))
	for i, b := range data {
		if b >= 0x20 && b < placeholder {
			buf[i] = b
		} else {
			buf[i] = placeholder
		}
	}
	return string(buf)
}

// charClass reports whether a byte belongs to a boundary class.
type charClass func(byte) bool

func isUpperAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isAlnum(b byte) bool {
	return isUpperAlnum(b) || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// boundedPattern is a compiled pattern whose match must not be preceded by a
// byte in before nor followed by a byte in after. A nil class disables that
// side. Rejected matches are retried one byte further on, so a candidate
// hiding behind a rejected one is still found.
type boundedPattern struct {
	re     *regexp.Regexp
	before charClass
	after  charClass
}

func bounded(expr string, before, after charClass) boundedPattern {
	return boundedPattern{re: regexp.MustCompile(expr), before: before, after: after}
}

func (p boundedPattern) accepts(s string, start, end int) bool {
	if p.before != nil && start > 0 && p.before(s[start-1]) {
		return false
	}
	if p.after != nil && end < len(s) && p.after(s[end]) {
		return false
	}
	return true
}

// next returns submatch offsets, relative to s, of the first accepted match
// starting at or after from.
func (p boundedPattern) next(s string, from int) []int {
	for from <= len(s) {
		loc := p.re.FindStringSubmatchIndex(s[from:])
		if loc == nil {
			return nil
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += from
			}
		}
		if p.accepts(s, loc[0], loc[1]) {
			return loc
		}
		from = loc[0] + 1
	}
	return nil
}

func (p boundedPattern) first(s string) []int {
	return p.next(s, 0)
}

// all returns every accepted, non-overlapping match in order.
func (p boundedPattern) all(s string) [][]int {
	var out [][]int
	from := 0
	for {
		loc := p.next(s, from)
		if loc == nil {
			return out
		}
		out = append(out, loc)
		if loc[1] > loc[0] {
			from = loc[1]
		} else {
			from = loc[0] + 1
		}
	}
}

// group extracts submatch n from offsets produced against s.
func group(s string, loc []int, n int) string {
	if loc == nil || 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

// plausible rejects low-entropy candidates: at least four distinct
// characters are required.
func plausible(s string) bool {
	var seen [256]bool
	distinct := 0
	for i := 0; i < len(s); i++ {
		if !seen[s[i]] {
			seen[s[i]] = true
			distinct++
			if distinct >= 4 {
				return true
			}
		}
	}
	return false
}
