package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a short ISO-style currency code.
type Currency string

// Known currencies offered by the client.
const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// KnownCurrencies lists the currencies offered in filters and forms, in display order.
var KnownCurrencies = []Currency{CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP}

var currencySymbols = map[Currency]string{
	CurrencyINR: "₹",
	CurrencyUSD: "$",
	CurrencyEUR: "€",
	CurrencyGBP: "£",
}

// ParseCurrency normalizes a currency code. Unknown codes are accepted as long
// as they are three letters, so the set stays extensible.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code %q", s)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid currency code %q", s)
		}
	}
	return Currency(code), nil
}

// Symbol returns the display symbol, or the code itself when none is known.
func (c Currency) Symbol() string {
	if sym, ok := currencySymbols[c]; ok {
		return sym
	}
	return string(c)
}

// ParseAmount parses a positive decimal amount such as "12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", amount)
	}
	return amount, nil
}

// Payment is a single payment record as returned by the API.
// Records are immutable once fetched.
type Payment struct {
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	ID        string          `json:"id"`
	Currency  Currency        `json:"currency"`
	PayedFrom string          `json:"payedFrom"`
	PayedTo   string          `json:"payedTo"`
	UserID    string          `json:"userId"`
}

// FormatAmount renders the amount with its currency symbol, e.g. "₹100.00".
func (p Payment) FormatAmount() string {
	return p.Currency.Symbol() + p.Amount.StringFixed(2)
}

// CreatePayment is the request body for a new payment. The server assigns the
// identifier, the timestamp and the owning account.
type CreatePayment struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  Currency        `json:"currency"`
	PayedFrom string          `json:"payedFrom"`
	PayedTo   string          `json:"payedTo"`
}

// Validate checks the fields required by the API.
func (c CreatePayment) Validate() error {
	if !c.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", c.Amount)
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if strings.TrimSpace(c.PayedFrom) == "" {
		return fmt.Errorf("payed from is required")
	}
	if strings.TrimSpace(c.PayedTo) == "" {
		return fmt.Errorf("payed to is required")
	}
	return nil
}
