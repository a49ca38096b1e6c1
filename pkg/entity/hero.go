package entity

// HeroStats are the player-specific stat overrides persisted per (user, hero).
type HeroStats struct {
	MaxHealth     float64 `json:"maxHealth"`
	HealthRegen   float64 `json:"healthRegen"`
	MaxEnergy     float64 `json:"maxEnergy"`
	EnergyRegen   float64 `json:"energyRegen"`
	Damage        float64 `json:"damage"`
	MovementSpeed float64 `json:"movementSpeed"`
	Vampirism     float64 `json:"vampirism"`
}

// HeroProfile is the merged hero view returned to the client: catalog
// baselines overridden by player progress where a progress row exists, zero
// coins and income otherwise.
type HeroProfile struct {
	HeroID   int64  `json:"heroId"`
	HeroName string `json:"heroName"`
	UserID   int64  `json:"userId"`
	Coins    int64  `json:"coins"`
	HeroStats
	CurrentIncome float64 `json:"currentIncome"`
	Level         int     `json:"level"`
}
