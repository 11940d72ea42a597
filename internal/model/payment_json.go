package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layouts accepted for payment timestamps. Timestamps without a zone are read
// as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the API is known to emit.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts zone-less timestamps in addition to RFC 3339.
func (p *Payment) UnmarshalJSON(data []byte) error {
	type alias Payment
	aux := struct {
		*alias
		Date string `json:"date"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		return fmt.Errorf("payment %q has no date", p.ID)
	}
	t, err := ParseTimestamp(aux.Date)
	if err != nil {
		return fmt.Errorf("payment %q: %w", p.ID, err)
	}
	p.Date = t
	return nil
}

// MarshalJSON sends the amount as a JSON number, which is what the API expects.
func (c CreatePayment) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    json.Number `json:"amount"`
		Currency  Currency    `json:"currency"`
		PayedFrom string      `json:"payedFrom"`
		PayedTo   string      `json:"payedTo"`
	}{
		Amount:    json.Number(c.Amount.String()),
		Currency:  c.Currency,
		PayedFrom: c.PayedFrom,
		PayedTo:   c.PayedTo,
	})
}
