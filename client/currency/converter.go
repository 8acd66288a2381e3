// Package currency maps prices between the catalog's canonical currency and the
// currency a shopper is viewing.
package currency

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Snapshot is one set of exchange rates. A rate is the number of canonical units
// one unit of the display currency is worth; FeePercent is the markup applied
// when prices are shown in a non-canonical currency.
type Snapshot struct {
	Canonical  string                     `json:"base"`
	Rates      map[string]decimal.Decimal `json:"rates"`
	FeePercent decimal.Decimal            `json:"feePercent"`
	FetchedAt  time.Time                  `json:"fetchedAt"`
}

// Rate returns the rate for code when it is known and positive.
func (s *Snapshot) Rate(code string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	rate, ok := s.Rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// converts reports whether prices in display need converting at all, and with
// which rate. A snapshot whose fee leaves no positive markup converts nothing.
func (s *Snapshot) converts(display string) (decimal.Decimal, bool) {
	if s == nil || strings.TrimSpace(display) == "" || strings.EqualFold(strings.TrimSpace(display), s.Canonical) {
		return decimal.Zero, false
	}
	if !s.markup().IsPositive() {
		return decimal.Zero, false
	}
	return s.Rate(display)
}

func (s *Snapshot) markup() decimal.Decimal {
	return decimal.NewFromInt(1).Add(s.FeePercent.Div(hundred))
}

// ToCanonical converts a price the shopper typed in display currency back into
// the canonical currency: entered * rate / (1 + fee/100). The value passes
// through unchanged when display is canonical, no rate is available or the fee
// is -100% or lower. An empty
// or unparsable entry yields ok=false, meaning "no bound", never zero.
func ToCanonical(entered, display string, snap *Snapshot) (decimal.Decimal, bool) {
	raw := strings.TrimSpace(entered)
	if raw == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	rate, ok := snap.converts(display)
	if !ok {
		return amount, true
	}
	return amount.Mul(rate).Div(snap.markup()), true
}

// ToDisplay is the inverse of ToCanonical.
func ToDisplay(canonical decimal.Decimal, display string, snap *Snapshot) decimal.Decimal {
	rate, ok := snap.converts(display)
	if !ok {
		return canonical
	}
	return canonical.Mul(snap.markup()).Div(rate)
}

// FormatAmount renders an amount for a query parameter.
func FormatAmount(d decimal.Decimal) string {
	return d.Round(4).String()
}
