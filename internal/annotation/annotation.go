// Package annotation extracts "Key: value" pay lines embedded in free-text
// calendar descriptions.
//
// A line is an annotation when the whole line reads
//
//	Income: $120.50
//	tips: 15
//
// that is: letters, a colon, at least one space, an optional dollar sign and a
// value made of letters, digits and dots. Matching lines are removed from the
// description; everything else is kept verbatim.
package annotation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	appLog "shiftsync/internal/log"
)

const (
	KeyIncome = "Income"
	KeyTips   = "Tips"
)

// DefaultKeys is the allow-list used when a Parser is built without keys.
var DefaultKeys = []string{KeyIncome, KeyTips}

var linePattern = regexp.MustCompile(`^([A-Za-z]+): +\$?([0-9A-Za-z.]+)$`)

// Values maps a normalized key to its raw string value (dollar sign removed).
type Values map[string]string

// Number returns the value under key as a decimal. The result is invalid when
// the key is absent or its value is not a number.
func (v Values) Number(key string) decimal.NullDecimal {
	raw, ok := v[key]
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// Result is the outcome of parsing one description.
type Result struct {
	Values Values
	// Unknown lists keys outside the allow-list, in text order.
	Unknown []string
	// Cleaned is the input with every annotation line removed.
	Cleaned string
}

// Parser scans descriptions for annotations, checking keys against an
// allow-list.
type Parser struct {
	known map[string]struct{}
}

// NewParser builds a Parser recognizing keys. With no keys, DefaultKeys is used.
func NewParser(keys ...string) *Parser {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	p := &Parser{known: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		p.known[NormalizeKey(k)] = struct{}{}
	}
	return p
}

// Known reports whether key (after normalization) is in the allow-list.
func (p *Parser) Known(key string) bool {
	_, ok := p.known[NormalizeKey(key)]
	return ok
}

// Parse extracts annotations from text. Unknown keys are logged as warnings and
// still recorded. A key seen twice keeps its last value.
func (p *Parser) Parse(text string) Result {
	res := Result{Values: Values{}}
	if text == "" {
		return res
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		m := linePattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
		if m == nil {
			kept = append(kept, line)
			continue
		}

		key := NormalizeKey(m[1])
		value := m[2]

		if !p.Known(key) {
			appLog.Warn("unrecognized annotation key", "key", key, "value", value)
			res.Unknown = append(res.Unknown, key)
		}
		res.Values[key] = value
	}

	res.Cleaned = strings.Join(kept, "\n")
	return res
}

// NormalizeKey upper-cases the first letter of key and lower-cases the rest,
// so "INCOME", "income" and "InCome" all become "Income".
func NormalizeKey(key string) string {
	if key == "" {
		return key
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + strings.ToLower(key[size:])
}
