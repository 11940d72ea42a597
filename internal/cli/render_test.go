package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/spend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBuckets(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	buckets := []model.DateBucket{
		{
			Day:   day,
			Label: "March 1, 2024",
			Payments: []model.Payment{
				{
					ID:        "p1",
					Amount:    decimal.RequireFromString("100"),
					Currency:  model.CurrencyINR,
					PayedFrom: "Wallet",
					PayedTo:   "Grocer",
					Date:      day.Add(9 * time.Hour),
				},
				{
					ID:        "p2",
					Amount:    decimal.RequireFromString("12.5"),
					Currency:  model.CurrencyUSD,
					PayedFrom: "Card",
					PayedTo:   "Cafe",
					Date:      day.Add(8 * time.Hour),
				},
			},
		},
	}

	var out bytes.Buffer
	require.NoError(t, PrintBuckets(&out, "My Payments", buckets))

	text := out.String()
	assert.Contains(t, text, "My Payments")
	assert.Contains(t, text, "March 1, 2024")
	assert.Contains(t, text, "Wallet → Grocer")
	assert.Contains(t, text, "₹100.00")
	assert.Contains(t, text, "$12.50")
	assert.Contains(t, text, "09:00")
	assert.Contains(t, text, "p2")
	assert.Contains(t, text, "2 payments")
}

func TestPrintBuckets_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, PrintBuckets(&out, "My Payments", nil))

	assert.Contains(t, out.String(), "No payments found")
}

func TestPrintDefaults(t *testing.T) {
	var out bytes.Buffer
	err := PrintDefaults(&out, model.Defaults{
		PayedTo: []string{"Grocer", "Landlord"},
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Payed to")
	assert.Contains(t, text, "1. Grocer")
	assert.Contains(t, text, "2. Landlord")
	assert.Contains(t, text, "No payed-from defaults")
}

func TestPrintUser(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		var out bytes.Buffer
		user := &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: "user"}

		require.NoError(t, PrintUser(&out, user, time.Now().Add(time.Hour)))

		text := out.String()
		assert.Contains(t, text, "alice")
		assert.Contains(t, text, "alice@example.com")
		assert.NotContains(t, text, "expired")
	})

	t.Run("expired", func(t *testing.T) {
		var out bytes.Buffer
		user := &model.User{ID: "u1", Username: "alice", Email: "alice@example.com", Role: "user"}

		require.NoError(t, PrintUser(&out, user, time.Now().Add(-time.Hour)))
		assert.Contains(t, out.String(), "expired")
	})

	t.Run("logged out", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, PrintUser(&out, nil, time.Time{}))
		assert.Contains(t, out.String(), "Not logged in")
	})
}

func TestNewLoadProgress(t *testing.T) {
	var out bytes.Buffer
	bar := NewLoadProgress(&out, "Loading payments")

	require.NoError(t, bar.Add(20))
	require.NoError(t, bar.Add(5))
	assert.Equal(t, int64(25), bar.State().CurrentNum)
	require.NoError(t, bar.Finish())
}
