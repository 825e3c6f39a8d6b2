// Package pricing provides pure helpers for price formatting, comparison and
// flat-rate currency conversion.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is a code with a display symbol and a flat exchange rate relative
// to the table's base currency. Rates carry no time dimension.
type Currency struct {
	Code   string
	Symbol string
	Rate   decimal.Decimal
}

// Table resolves currency symbols and flat exchange rates.
type Table struct {
	defaultCode string
	currencies  map[string]Currency
}

// DefaultCurrencies is the seeded currency set used when no rate table is configured.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Symbol: "$", Rate: decimal.NewFromInt(1)},
		{Code: "EUR", Symbol: "€", Rate: decimal.RequireFromString("0.92")},
		{Code: "GBP", Symbol: "£", Rate: decimal.RequireFromString("0.79")},
		{Code: "JPY", Symbol: "¥", Rate: decimal.RequireFromString("149.50")},
		{Code: "SAR", Symbol: "﷼", Rate: decimal.RequireFromString("3.75")},
		{Code: "AED", Symbol: "د.إ", Rate: decimal.RequireFromString("3.67")},
	}
}

// NewTable builds a currency table. Codes are upper-cased; later entries win.
func NewTable(defaultCode string, currencies []Currency) *Table {
	t := &Table{
		defaultCode: strings.ToUpper(defaultCode),
		currencies:  make(map[string]Currency, len(currencies)),
	}
	for _, c := range currencies {
		c.Code = strings.ToUpper(c.Code)
		t.currencies[c.Code] = c
	}
	return t
}

// DefaultTable returns a table with the seeded currency set and USD default.
func DefaultTable() *Table {
	return NewTable("USD", DefaultCurrencies())
}

// TableFromRates overlays configured code-to-rate strings on the seeded
// currency set, so known symbols survive a rate override. Malformed or
// non-positive rates are skipped.
func TableFromRates(defaultCode string, rates map[string]string) *Table {
	currencies := DefaultCurrencies()
	index := make(map[string]int, len(currencies))
	for i, c := range currencies {
		index[c.Code] = i
	}

	for code, raw := range rates {
		rate, err := decimal.NewFromString(raw)
		if err != nil || rate.Sign() <= 0 {
			continue
		}
		code = strings.ToUpper(code)
		if i, ok := index[code]; ok {
			currencies[i].Rate = rate
		} else {
			currencies = append(currencies, Currency{Code: code, Rate: rate})
		}
	}

	if defaultCode == "" {
		defaultCode = "USD"
	}
	return NewTable(defaultCode, currencies)
}

// DefaultCode returns the table's default currency code.
func (t *Table) DefaultCode() string {
	return t.defaultCode
}

// Known reports whether the code has a configured currency entry.
func (t *Table) Known(code string) bool {
	_, ok := t.currencies[strings.ToUpper(code)]
	return ok
}

// Rate returns the flat rate for the code, or 1.0 when the currency is unknown.
func (t *Table) Rate(code string) decimal.Decimal {
	if c, ok := t.currencies[strings.ToUpper(code)]; ok && !c.Rate.IsZero() {
		return c.Rate
	}
	return decimal.NewFromInt(1)
}

// FormatPrice renders a price with two decimal digits and thousands
// separators. A known currency gets its symbol prefixed; an unknown code is
// appended after the amount. An empty code means the table default.
func (t *Table) FormatPrice(price decimal.Decimal, code string) string {
	if code == "" {
		code = t.defaultCode
	}
	code = strings.ToUpper(code)
	amount := groupThousands(price.StringFixed(2))
	if c, ok := t.currencies[code]; ok && c.Symbol != "" {
		return c.Symbol + amount
	}
	return amount + " " + code
}

// FormatPriceRange renders "min - max", collapsing to a single value when the
// bounds are equal. The symbol is applied to each bound.
func (t *Table) FormatPriceRange(min, max decimal.Decimal, code string) string {
	if min.Equal(max) {
		return t.FormatPrice(min, code)
	}
	return t.FormatPrice(min, code) + " - " + t.FormatPrice(max, code)
}

// Convert applies the flat rate table: amount / rate(from) * rate(to).
func (t *Table) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	return amount.Div(t.Rate(from)).Mul(t.Rate(to))
}

// PriceDifference returns (compare-original)/original*100. When original is
// zero or negative the difference is defined as exactly zero.
func PriceDifference(original, compare decimal.Decimal) decimal.Decimal {
	if original.Sign() <= 0 {
		return decimal.Zero
	}
	return compare.Sub(original).Div(original).Mul(decimal.NewFromInt(100))
}

// IsGoodDeal reports whether price is strictly below 90% of the mean of
// allPrices. An empty price set is never a good deal; equality with the
// threshold is not either.
func IsGoodDeal(price decimal.Decimal, allPrices []decimal.Decimal) bool {
	if len(allPrices) == 0 {
		return false
	}
	sum := decimal.Zero
	for _, p := range allPrices {
		sum = sum.Add(p)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(allPrices))))
	threshold := mean.Mul(decimal.RequireFromString("0.9"))
	return price.Cmp(threshold) < 0
}

// BestPrice returns the lowest price in the slice. ok is false for an empty slice.
func BestPrice(prices []decimal.Decimal) (best decimal.Decimal, ok bool) {
	if len(prices) == 0 {
		return decimal.Zero, false
	}
	best = prices[0]
	for _, p := range prices[1:] {
		if p.Cmp(best) < 0 {
			best = p
		}
	}
	return best, true
}

// groupThousands inserts comma separators into the integer part of a fixed
// decimal string like "1234567.89".
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
