package wallet

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Split(t *testing.T) {
	t.Parallel()

	rate := decimal.RequireFromString("0.05")

	tests := []struct {
		name       string
		amount     string
		wantFee    string
		wantWorker string
	}{
		{name: "round amount", amount: "100.00", wantFee: "5.00", wantWorker: "95.00"},
		{name: "small amount", amount: "1.00", wantFee: "0.05", wantWorker: "0.95"},
		{name: "fee rounds down", amount: "33.33", wantFee: "1.66", wantWorker: "31.67"},
		{name: "sub cent fee goes to worker", amount: "0.10", wantFee: "0.00", wantWorker: "0.10"},
		{name: "one cent", amount: "0.01", wantFee: "0.00", wantWorker: "0.01"},
		{name: "large amount", amount: "99999.99", wantFee: "4999.99", wantWorker: "95000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)

			fee, worker := Split(amount, rate)

			assert.True(t, fee.Equal(decimal.RequireFromString(tt.wantFee)), "fee=%s", fee)
			assert.True(t, worker.Equal(decimal.RequireFromString(tt.wantWorker)), "worker=%s", worker)
			require.True(t, fee.Add(worker).Equal(amount), "fee + worker must reconcile to the released amount exactly")
		})
	}

	t.Run("zero rate sends everything to worker", func(t *testing.T) {
		fee, worker := Split(decimal.RequireFromString("42.00"), decimal.Zero)

		assert.True(t, fee.IsZero())
		assert.True(t, worker.Equal(decimal.RequireFromString("42.00")))
	})
}
