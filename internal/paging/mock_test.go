package paging

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchPage(ctx context.Context, scope model.Scope, page, size int) ([]model.Payment, error) {
	args := m.Called(ctx, scope, page, size)
	records, _ := args.Get(0).([]model.Payment)
	return records, args.Error(1)
}

type mockDeleter struct {
	mock.Mock
}

func (m *mockDeleter) DeletePayment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// makePage builds count payments with ids prefix-1..prefix-count, one per
// hour going back from a fixed day.
func makePage(prefix string, count int) []model.Payment {
	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	out := make([]model.Payment, count)
	for i := range out {
		out[i] = model.Payment{
			ID:        fmt.Sprintf("%s-%d", prefix, i+1),
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Currency:  model.CurrencyINR,
			Date:      base.Add(-time.Duration(i) * time.Hour),
			PayedFrom: "Wallet",
			PayedTo:   "Shop",
		}
	}
	return out
}
