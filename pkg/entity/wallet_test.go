package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccruedRoundsHalfAwayFromZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		rate    float64
		elapsed time.Duration
		want    int64
	}{
		{"whole coins", 2.0, 10 * time.Second, 20},
		{"rounds half up", 0.5, 3 * time.Second, 2},
		{"rounds down below half", 0.4, 1 * time.Second, 0},
		{"rounds up above half", 1.1, 5 * time.Second, 6},
		{"zero rate", 0, time.Hour, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Wallet{IncomeRate: tt.rate, LastUpdated: now.Add(-tt.elapsed)}
			assert.Equal(t, tt.want, w.Accrued(now))
		})
	}
}

func TestAccruedIgnoresBackwardsClock(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Wallet{IncomeRate: 5.0, LastUpdated: now.Add(time.Minute)}

	assert.Equal(t, int64(0), w.Accrued(now))
}

func TestReconcileAddsAccrualAndDelta(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Wallet{
		UserID:       1,
		HeroID:       1,
		CurrentMoney: 100,
		IncomeRate:   2.0,
		LastUpdated:  start,
	}

	now := start.Add(30 * time.Second)
	got := w.Reconcile(now, 50, nil)

	// 100 stored + round(30 * 2.0) accrued + 50 earned
	assert.Equal(t, int64(210), got.CurrentMoney)
	assert.Equal(t, now, got.LastUpdated)
	assert.True(t, got.IsCurrentHero)
}

func TestReconcilePreservesRateWhenNil(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Wallet{CurrentMoney: 10, IncomeRate: 3.5, LastUpdated: start}

	got := w.Reconcile(start.Add(time.Second), 0, nil)

	assert.Equal(t, 3.5, got.IncomeRate)
}

func TestReconcileAppliesNewRate(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Wallet{CurrentMoney: 10, IncomeRate: 3.5, LastUpdated: start}

	rate := 7.0
	got := w.Reconcile(start.Add(10*time.Second), -20, &rate)

	// Accrual uses the rate that was in effect before the purchase.
	assert.Equal(t, int64(10+35-20), got.CurrentMoney)
	assert.Equal(t, 7.0, got.IncomeRate)
}

func TestReconcileAllowsNegativeBalance(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := Wallet{CurrentMoney: 100, LastUpdated: start}

	got := w.Reconcile(start, -500, nil)

	assert.Equal(t, int64(-400), got.CurrentMoney)
}

func TestNewWalletUsesDeltaAsOpeningBalance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	w := NewWallet(42, 7, 100, 0, now)

	assert.Equal(t, int64(42), w.UserID)
	assert.Equal(t, int64(7), w.HeroID)
	assert.Equal(t, int64(100), w.CurrentMoney)
	assert.Equal(t, 0.0, w.IncomeRate)
	assert.Equal(t, now, w.LastUpdated)
	assert.True(t, w.IsCurrentHero)
}

func TestTwoEarningsAccrueElapsedIncome(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rate := 4.0

	w := NewWallet(1, 1, 100, rate, t0)
	w = w.Reconcile(t0.Add(25*time.Second), 50, nil)

	// 100 + 50 earned plus round(25 * 4.0) accrued between the calls.
	assert.Equal(t, int64(250), w.CurrentMoney)
}
