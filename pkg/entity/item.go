package entity

// ItemState is the merged item view: catalog base values overridden by the
// player's purchase progress where present.
type ItemState struct {
	ItemID       int64   `json:"itemId"`
	ItemName     string  `json:"itemName"`
	BaseValue    float64 `json:"baseValue"`
	CurrentLevel int     `json:"currentLevel"`
	CurrentValue float64 `json:"currentValue"`
	CurrentPrice float64 `json:"currentPrice"`
}

// ItemCatalog groups item states by shop category, keyed by item id.
type ItemCatalog map[string]map[int64]ItemState

// PurchaseState carries everything a single item purchase writes: the money
// delta and new income rate, the item progress, and the hero stat overrides.
// The three writes are one logical transaction.
type PurchaseState struct {
	UserID        int64
	HeroID        int64
	ItemID        int64
	CurrentLevel  int
	CurrentValue  float64
	Cost          int64
	CurrentPrice  float64
	Stats         HeroStats
	CurrentIncome float64
}

// LeaderboardEntry is one row of the richest-players board.
type LeaderboardEntry struct {
	UserID int64 `json:"userId"`
	Coins  int64 `json:"coins"`
}
