package names

import (
	"regexp"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Rule is an allow-list for a normalized entity name.
type Rule struct {
	Label string
	re    *regexp.Regexp
	need  *regexp.Regexp // must also match somewhere, when set
}

var (
	// Letters accepts uppercase letters and single spaces (companies, countries, ...).
	Letters = Rule{Label: "uppercase letters and spaces", re: regexp.MustCompile(`^[\p{Lu}]+( [\p{Lu}]+)*$`)}
	// Code additionally accepts digits and hyphens (lines, machines), but not
	// hyphens alone.
	Code = Rule{
		Label: "uppercase letters, digits, spaces and hyphens",
		re:    regexp.MustCompile(`^[\p{Lu}0-9-]+( [\p{Lu}0-9-]+)*$`),
		need:  regexp.MustCompile(`[\p{Lu}0-9]`),
	}
)

// Normalize uppercases a raw name as it is typed. Leading whitespace is dropped
// and runs of whitespace collapse to one space; a single trailing space is kept
// so the next word can still be typed.
func Normalize(raw string) string {
	s := strings.TrimLeft(raw, " \t\r\n")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.ToUpper(s)
}

// Canonical is Normalize plus trimming; this is the stored form.
func Canonical(raw string) string {
	return strings.TrimSpace(Normalize(raw))
}

// Match reports whether a canonical name satisfies the rule.
func (r Rule) Match(name string) bool {
	if r.re == nil {
		return name != ""
	}
	if r.need != nil && !r.need.MatchString(name) {
		return false
	}
	return r.re.MatchString(name)
}
