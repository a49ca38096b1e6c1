package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sonastea/HeroClicker/pkg/entity"
)

// ErrNotFound is returned when a requested hero or catalog row does not exist.
var ErrNotFound = errors.New("not found")

// PlayerRepository defines the interface for player state storage operations.
// Every mutation reconciles accrued passive income and marks the touched hero
// as the player's current hero inside a single transaction.
type PlayerRepository interface {
	ApplyEarning(ctx context.Context, userID, heroID, income int64) (int64, error)
	ApplyPurchase(ctx context.Context, purchase entity.PurchaseState) (int64, error)
	SelectHero(ctx context.Context, userID, heroID int64) error
	CurrentHero(ctx context.Context, userID int64) (int64, error)
	GetHeroProfile(ctx context.Context, userID, heroID int64) (*entity.HeroProfile, error)
	GetItemCatalog(ctx context.Context, userID int64) (entity.ItemCatalog, error)
}

// playerRepository implements PlayerRepository with postgresql pooling
type playerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PostgreSQL player repository
func NewPlayerRepository(pool *pgxpool.Pool) PlayerRepository {
	return &playerRepository{pool: pool}
}

// reconcileWallet locks the wallet row, folds accrued income and the request
// delta into it, clears the player's current-hero flags, and upserts the new
// state. The row lock keeps concurrent requests for the same player from
// double-counting the accrual window. Returns the new balance.
func (r *playerRepository) reconcileWallet(ctx context.Context, tx pgx.Tx, userID, heroID, delta int64, rate *float64) (int64, error) {
	now := time.Now().UTC()

	var wallet entity.Wallet
	err := tx.QueryRow(ctx, `
		SELECT current_money, offline_money, last_updated
		FROM user_money
		WHERE user_id = $1 AND hero_id = $2
		FOR UPDATE
	`, userID, heroID).Scan(&wallet.CurrentMoney, &wallet.IncomeRate, &wallet.LastUpdated)

	switch {
	case err == nil:
		wallet.UserID = userID
		wallet.HeroID = heroID
		wallet = wallet.Reconcile(now, delta, rate)
	case errors.Is(err, pgx.ErrNoRows):
		var initialRate float64
		if rate != nil {
			initialRate = *rate
		}
		wallet = entity.NewWallet(userID, heroID, delta, initialRate, now)
	default:
		return 0, fmt.Errorf("failed to read wallet: %w", err)
	}

	// Clear-then-set keeps at most one current hero per player; both
	// statements run in the caller's transaction.
	_, err = tx.Exec(ctx, `
		UPDATE user_money SET is_current_hero = FALSE WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear current hero: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_money (user_id, hero_id, current_money, offline_money, last_updated, is_current_hero)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (user_id, hero_id)
		DO UPDATE SET
			current_money = EXCLUDED.current_money,
			offline_money = EXCLUDED.offline_money,
			last_updated = EXCLUDED.last_updated,
			is_current_hero = TRUE
	`, userID, heroID, wallet.CurrentMoney, wallet.IncomeRate, wallet.LastUpdated)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert wallet: %w", err)
	}

	return wallet.CurrentMoney, nil
}

// ApplyEarning reconciles accrued passive income and adds a one-time income
// amount. The stored income rate is preserved; only purchases change it.
// Returns the new balance.
func (r *playerRepository) ApplyEarning(ctx context.Context, userID, heroID, income int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := r.reconcileWallet(ctx, tx, userID, heroID, income, nil)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// ApplyPurchase reconciles the wallet with the purchase cost subtracted and
// the new income rate applied, then upserts the item progress and the hero
// stat overrides. All three writes are one transaction; a failure partway
// rolls back everything. The balance is allowed to go negative; the client
// decides affordability. Returns the new balance.
func (r *playerRepository) ApplyPurchase(ctx context.Context, purchase entity.PurchaseState) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rate := purchase.CurrentIncome
	balance, err := r.reconcileWallet(ctx, tx, purchase.UserID, purchase.HeroID, -purchase.Cost, &rate)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_item (user_id, hero_id, item_id, current_level, current_value, current_price, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, item_id, hero_id)
		DO UPDATE SET
			current_level = EXCLUDED.current_level,
			current_value = EXCLUDED.current_value,
			current_price = EXCLUDED.current_price,
			last_updated = CURRENT_TIMESTAMP
	`, purchase.UserID, purchase.HeroID, purchase.ItemID,
		purchase.CurrentLevel, purchase.CurrentValue, purchase.CurrentPrice)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert item progress: %w", err)
	}

	stats := purchase.Stats
	_, err = tx.Exec(ctx, `
		INSERT INTO user_hero (user_id, hero_id, max_health, health_regen, max_energy, energy_regen, damage, movement_speed, vampirism)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, hero_id)
		DO UPDATE SET
			max_health = EXCLUDED.max_health,
			health_regen = EXCLUDED.health_regen,
			max_energy = EXCLUDED.max_energy,
			energy_regen = EXCLUDED.energy_regen,
			damage = EXCLUDED.damage,
			movement_speed = EXCLUDED.movement_speed,
			vampirism = EXCLUDED.vampirism
	`, purchase.UserID, purchase.HeroID, stats.MaxHealth, stats.HealthRegen,
		stats.MaxEnergy, stats.EnergyRegen, stats.Damage, stats.MovementSpeed, stats.Vampirism)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert hero stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// SelectHero flips the player's current-hero flag to the given hero in a
// single statement, so no interleaving can leave two heroes flagged.
func (r *playerRepository) SelectHero(ctx context.Context, userID, heroID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE user_money
		SET is_current_hero = (hero_id = $2)
		WHERE user_id = $1
	`, userID, heroID)
	if err != nil {
		return fmt.Errorf("failed to select hero: %w", err)
	}

	return nil
}

// CurrentHero returns the player's selected hero id, or DefaultHeroID when
// the player has no selection yet.
func (r *playerRepository) CurrentHero(ctx context.Context, userID int64) (int64, error) {
	var heroID int64
	err := r.pool.QueryRow(ctx, `
		SELECT hero_id
		FROM user_money
		WHERE user_id = $1 AND is_current_hero
	`, userID).Scan(&heroID)
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.DefaultHeroID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current hero: %w", err)
	}

	return heroID, nil
}

// GetHeroProfile retrieves the merged hero view: catalog baselines overridden
// by the player's progress rows where present. A hero id missing from the
// catalog yields ErrNotFound.
func (r *playerRepository) GetHeroProfile(ctx context.Context, userID, heroID int64) (*entity.HeroProfile, error) {
	query := `
		SELECT h.hero_id,
			h.hero_name,
			COALESCE(um.current_money, 0),
			COALESCE(uh.max_health, h.max_health),
			COALESCE(uh.health_regen, h.health_regen),
			COALESCE(uh.max_energy, h.max_energy),
			COALESCE(uh.energy_regen, h.energy_regen),
			COALESCE(uh.damage, h.damage),
			COALESCE(uh.movement_speed, h.movement_speed),
			COALESCE(uh.vampirism, h.vampirism),
			COALESCE(um.offline_money, 0),
			COALESCE(uh.level, 0)
		FROM heroes h
		LEFT JOIN user_money um ON um.hero_id = h.hero_id AND um.user_id = $1
		LEFT JOIN user_hero uh ON uh.hero_id = um.hero_id AND uh.user_id = um.user_id
		WHERE h.hero_id = $2
	`

	var profile entity.HeroProfile
	err := r.pool.QueryRow(ctx, query, userID, heroID).Scan(
		&profile.HeroID,
		&profile.HeroName,
		&profile.Coins,
		&profile.MaxHealth,
		&profile.HealthRegen,
		&profile.MaxEnergy,
		&profile.EnergyRegen,
		&profile.Damage,
		&profile.MovementSpeed,
		&profile.Vampirism,
		&profile.CurrentIncome,
		&profile.Level,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("hero %d: %w", heroID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hero profile: %w", err)
	}

	profile.UserID = userID
	return &profile, nil
}

// GetItemCatalog retrieves the full item catalog with the current hero's
// purchase progress merged in. Items the player never bought resolve to their
// base value and price at level 0.
func (r *playerRepository) GetItemCatalog(ctx context.Context, userID int64) (entity.ItemCatalog, error) {
	query := `
		WITH current_hero_items AS (
			SELECT ui.item_id, ui.current_level, ui.current_value, ui.current_price
			FROM user_item ui
			INNER JOIN user_money um ON um.user_id = ui.user_id AND um.hero_id = ui.hero_id
			WHERE um.user_id = $1 AND um.is_current_hero
		)
		SELECT id.shop_category,
			id.item_id,
			id.item_name,
			id.base_value,
			COALESCE(chi.current_level, 0) AS current_level,
			COALESCE(chi.current_value, id.base_value) AS current_value,
			COALESCE(chi.current_price, id.base_price) AS current_price
		FROM item_dict id
		LEFT JOIN current_hero_items chi ON id.item_id = chi.item_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item catalog: %w", err)
	}
	defer rows.Close()

	catalog := make(entity.ItemCatalog)
	for rows.Next() {
		var category string
		var item entity.ItemState
		err := rows.Scan(
			&category,
			&item.ItemID,
			&item.ItemName,
			&item.BaseValue,
			&item.CurrentLevel,
			&item.CurrentValue,
			&item.CurrentPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if catalog[category] == nil {
			catalog[category] = make(map[int64]entity.ItemState)
		}
		catalog[category][item.ItemID] = item
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", rows.Err())
	}

	return catalog, nil
}
