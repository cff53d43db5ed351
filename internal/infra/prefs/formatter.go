package prefs

import (
	"fmt"
	"strconv"
	"strings"

	"kase/internal/app/policies"
	"kase/internal/domain/shared/money"
)

// Formatter renders minor-unit amounts for display. It deliberately does no
// conversion: the preferences service owns locale and currency choice, this
// fallback covers direct API consumers.
type Formatter struct{}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// zeroDecimal currencies carry no fractional part; everything else is
// assumed to use two minor-unit digits.
var zeroDecimal = map[string]bool{
	"JPY": true,
	"KRW": true,
	"VND": true,
}

func (Formatter) FormatPrice(amount money.Money) string {
	minor := amount.Amount
	negative := minor < 0
	if negative {
		minor = -minor
	}

	decimals := 2
	if zeroDecimal[amount.Currency] {
		decimals = 0
	}
	factor := int64(1)
	for i := 0; i < decimals; i++ {
		factor *= 10
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	symbol, known := symbols[amount.Currency]
	if known {
		b.WriteString(symbol)
	}
	b.WriteString(groupThousands(minor / factor))
	if decimals > 0 {
		b.WriteString(fmt.Sprintf(".%0*d", decimals, minor%factor))
	}
	if !known && amount.Currency != "" {
		b.WriteString(" " + amount.Currency)
	}
	return b.String()
}

func groupThousands(v int64) string {
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

var _ policies.PreferencesPort = Formatter{}
