package entity

import (
	"math"
	"time"
)

// DefaultHeroID is the hero every player is on before they make an explicit
// selection.
const DefaultHeroID int64 = 1

// Wallet is the per-(user, hero) money state. IncomeRate is coins earned per
// second while the player is away; CurrentMoney only reflects that income
// after a reconciliation against LastUpdated.
type Wallet struct {
	UserID        int64     `json:"userId"`
	HeroID        int64     `json:"heroId"`
	CurrentMoney  int64     `json:"currentMoney"`
	IncomeRate    float64   `json:"incomeRate"`
	LastUpdated   time.Time `json:"lastUpdated"`
	IsCurrentHero bool      `json:"isCurrentHero"`
}

// Accrued returns the passive income earned between LastUpdated and now,
// rounded half away from zero. A clock that went backwards accrues nothing.
func (w Wallet) Accrued(now time.Time) int64 {
	elapsed := now.Sub(w.LastUpdated).Seconds()
	if elapsed <= 0 {
		return 0
	}

	return int64(math.Round(elapsed * w.IncomeRate))
}

// Reconcile folds accrued passive income and a one-time delta into the wallet
// and stamps it with now. A nil rate keeps the stored income rate; reconciling
// must stay atomic with the write, so callers run this inside the same
// transaction that persists the result.
func (w Wallet) Reconcile(now time.Time, delta int64, rate *float64) Wallet {
	w.CurrentMoney += w.Accrued(now) + delta
	if rate != nil {
		w.IncomeRate = *rate
	}
	w.LastUpdated = now
	w.IsCurrentHero = true

	return w
}

// NewWallet is the state written on the first money event for a (user, hero)
// pair: the request delta is the opening balance.
func NewWallet(userID, heroID, delta int64, rate float64, now time.Time) Wallet {
	return Wallet{
		UserID:        userID,
		HeroID:        heroID,
		CurrentMoney:  delta,
		IncomeRate:    rate,
		LastUpdated:   now,
		IsCurrentHero: true,
	}
}
