// Package money converts decimal amounts into locale-formatted currency
// strings. It is the only place in the module where amounts are rounded.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Defaults used when no currency or locale is configured
const (
	DefaultCurrency = "NGN"
	DefaultLocale   = "en-NG"
)

// MinorUnits is the number of fractional digits printed for every supported currency
const MinorUnits = 2

var symbols = map[string]string{
	"NGN": "₦",
	"USD": "$",
	"AUD": "$",
	"CAD": "$",
	"GBP": "£",
	"EUR": "€",
	"GHS": "GH₵",
	"KES": "KSh",
	"ZAR": "R",
	"INR": "₹",
}

// Formatter renders amounts for a single currency and locale
type Formatter struct {
	currency string
	symbol   string
	tag      language.Tag
	group    string
	point    string
}

// New creates a Formatter. Unknown locales fall back to English and unknown
// currencies are printed with their ISO code.
func New(currency, locale string) *Formatter {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	group, point := separators(message.NewPrinter(tag))
	return &Formatter{
		currency: currency,
		symbol:   Symbol(currency),
		tag:      tag,
		group:    group,
		point:    point,
	}
}

// separators reads the locale's group and decimal separators from a sample
// printed by x/text. Locales with non-Latin digits fall back to "," and ".".
func separators(p *message.Printer) (group, point string) {
	sample := p.Sprintf("%.2f", 1234.5)
	i := strings.Index(sample, "234")
	if !strings.HasPrefix(sample, "1") || i < 1 || !strings.HasSuffix(sample, "50") || i+3 > len(sample)-2 {
		return ",", "."
	}
	group, point = sample[1:i], sample[i+3:len(sample)-2]
	if point == "" {
		return ",", "."
	}
	return group, point
}

// Symbol returns the display symbol for an ISO currency code
func Symbol(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if s, ok := symbols[currency]; ok {
		return s
	}
	return currency + " "
}

// Currency returns the ISO code this formatter prints
func (f *Formatter) Currency() string {
	return f.currency
}

// Locale returns the language tag used for digit grouping
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// ForCurrency returns a formatter for another currency in the same locale,
// or f itself when the currency is empty or unchanged
func (f *Formatter) ForCurrency(currency string) *Formatter {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == f.currency {
		return f
	}
	return New(currency, f.tag.String())
}

// Format rounds half away from zero to minor units and prints the amount
// with the currency symbol, e.g. ₦5,697.50 or -₦302.50
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := amount.Round(MinorUnits)

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}

	return sign + f.symbol + f.Number(rounded)
}

// Number prints a non-symbol amount with locale grouping and two decimals.
// Digits come from the decimal itself so large amounts stay exact.
func (f *Formatter) Number(amount decimal.Decimal) string {
	fixed := amount.StringFixed(MinorUnits)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(d)
	}
	b.WriteString(f.point)
	b.WriteString(frac)
	return b.String()
}

// FormatPercent prints a rate without trailing zeros, e.g. 7.5%
func (f *Formatter) FormatPercent(rate decimal.Decimal) string {
	return rate.String() + "%"
}
