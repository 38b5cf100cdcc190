package perfbook

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseIssue describes a cell that could not be interpreted and was coerced
// to zero. Normalization never fails a report run for one bad cell; issues
// are returned alongside the zero value so callers can count or log them
// without changing control flow.
type ParseIssue struct {
	Raw     string // the raw cell content
	Section string // statement section, when known
	Column  string // column name, when known
}

func (i *ParseIssue) Error() string {
	msg := "unparseable amount " + strconv.Quote(i.Raw)
	if i.Section != "" {
		msg += " in " + i.Section
		if i.Column != "" {
			msg += "/" + i.Column
		}
	}
	return msg
}

// amountReplacer strips the decorations brokerages print around numbers:
// currency symbols, thousands separators and stray spaces.
var amountReplacer = strings.NewReplacer(",", "", "$", "", "€", "", "£", "", " ", "", " ", "")

// ParseAmount converts a raw statement cell into an exact decimal.
//
// It strips thousands separators and currency symbols, and interprets the
// accounting-negative convention: "(500)" is -500. An empty cell is zero
// with no issue; an unparseable cell is zero with a non-nil issue.
func ParseAmount(raw string) (decimal.Decimal, *ParseIssue) {
	cleaned := amountReplacer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + cleaned[1:len(cleaned)-1]
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &ParseIssue{Raw: raw}
	}
	return d, nil
}

// section artifacts that must never enter the instrument set.
var artifactTokens = map[string]bool{
	"":              true,
	"TOTAL":         true,
	"SUBTOTAL":      true,
	"ACCOUNT TOTAL": true,
}

// ValidTicker reports whether a token looks like an instrument identifier
// rather than a section artifact (totals, subtotals, blanks).
func ValidTicker(token string) bool {
	t := NormalizeTicker(token)
	if artifactTokens[t] {
		return false
	}
	return len(t) <= 10
}

// NormalizeTicker canonicalizes a ticker token: trimmed, upper-cased.
func NormalizeTicker(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// Dividend descriptions name the instrument as "ICSH(US46435G6724) Cash
// Dividend ..." when no Symbol column is present.
var symbolFromDescRE = regexp.MustCompile(`^([A-Z0-9.]+)\(`)

// SymbolFromDescription extracts the leading ticker from a dividend
// description line, when one is present.
func SymbolFromDescription(desc string) (string, bool) {
	m := symbolFromDescRE.FindStringSubmatch(strings.TrimSpace(desc))
	if m == nil {
		return "", false
	}
	return m[1], true
}
