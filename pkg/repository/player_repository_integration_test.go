//go:build integration

package repository

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sonastea/HeroClicker/pkg/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against a throwaway PostgreSQL database with db/schema.sql
// applied. They pin the upsert and COALESCE statements the unit tests can
// only mimic in memory:
//
//	TEST_DATABASE_URL=postgresql://... go test -tags integration ./pkg/repository
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func seedCatalog(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, `TRUNCATE user_money, user_hero, user_item, heroes, item_dict`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO heroes (hero_id, hero_name, max_health, health_regen, max_energy, energy_regen, damage, movement_speed, vampirism)
		VALUES (1, 'Axe', 600, 3, 280, 0.9, 50, 310, 0),
			(7, 'Lina', 480, 1.5, 460, 2, 62, 295, 0)
	`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO item_dict (item_id, shop_category, item_name, base_value, base_price)
		VALUES (3, 'weapons', 'Blade', 10, 100),
			(4, 'weapons', 'Axe', 15, 250),
			(9, 'armor', 'Shield', 5, 80)
	`)
	require.NoError(t, err)
}

// backdate moves a wallet's last reconciliation into the past and pins its
// income rate, simulating an idle window.
func backdate(t *testing.T, pool *pgxpool.Pool, userID, heroID int64, seconds int, rate float64) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		UPDATE user_money
		SET last_updated = last_updated - make_interval(secs => $3),
			offline_money = $4
		WHERE user_id = $1 AND hero_id = $2
	`, userID, heroID, seconds, rate)
	require.NoError(t, err)
}

func TestApplyEarningAccruesStoredIncome(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	balance, err := repo.ApplyEarning(ctx, 42, 7, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	backdate(t, pool, 42, 7, 10, 2.0)

	balance, err = repo.ApplyEarning(ctx, 42, 7, 5)
	require.NoError(t, err)
	// 100 stored + round(10 * 2.0) accrued + 5 earned
	assert.Equal(t, int64(125), balance)

	// Earning must not clobber the stored income rate.
	var rate float64
	err = pool.QueryRow(ctx, `
		SELECT offline_money FROM user_money WHERE user_id = 42 AND hero_id = 7
	`).Scan(&rate)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rate)
}

func TestMutationsKeepSingleCurrentHero(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	_, err := repo.ApplyEarning(ctx, 1, 1, 10)
	require.NoError(t, err)
	_, err = repo.ApplyEarning(ctx, 1, 7, 10)
	require.NoError(t, err)

	var count, current int64
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*), MAX(hero_id) FROM user_money WHERE user_id = 1 AND is_current_hero
	`).Scan(&count, &current)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(7), current)

	require.NoError(t, repo.SelectHero(ctx, 1, 1))

	hero, err := repo.CurrentHero(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hero)
}

func TestApplyPurchaseWritesAllThreeRows(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)
	ctx := context.Background()

	balance, err := repo.ApplyPurchase(ctx, entity.PurchaseState{
		UserID: 1, HeroID: 1, ItemID: 3,
		CurrentLevel: 2, CurrentValue: 14, Cost: 150, CurrentPrice: 180,
		Stats: entity.HeroStats{
			MaxHealth: 700, HealthRegen: 2.5, MaxEnergy: 400, EnergyRegen: 1.5,
			Damage: 65, MovementSpeed: 315, Vampirism: 0.1,
		},
		CurrentIncome: 3.5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-150), balance)

	profile, err := repo.GetHeroProfile(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(-150), profile.Coins)
	assert.Equal(t, 3.5, profile.CurrentIncome)
	assert.Equal(t, 700.0, profile.MaxHealth)
	assert.Equal(t, 65.0, profile.Damage)

	catalog, err := repo.GetItemCatalog(ctx, 1)
	require.NoError(t, err)
	blade := catalog["weapons"][3]
	assert.Equal(t, 2, blade.CurrentLevel)
	assert.Equal(t, 14.0, blade.CurrentValue)
	assert.Equal(t, 180.0, blade.CurrentPrice)
	// Untouched items keep catalog defaults.
	assert.Equal(t, 0, catalog["armor"][9].CurrentLevel)
	assert.Equal(t, 80.0, catalog["armor"][9].CurrentPrice)
}

func TestGetHeroProfileFallsBackToCatalogBaselines(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)

	profile, err := repo.GetHeroProfile(context.Background(), 99, 1)
	require.NoError(t, err)

	assert.Equal(t, "Axe", profile.HeroName)
	assert.Equal(t, int64(0), profile.Coins)
	assert.Equal(t, 0.0, profile.CurrentIncome)
	assert.Equal(t, 600.0, profile.MaxHealth)
	assert.Equal(t, 0, profile.Level)
}

func TestGetHeroProfileUnknownHero(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)

	_, err := repo.GetHeroProfile(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCurrentHeroDefaultsWithoutSelection(t *testing.T) {
	pool := testPool(t)
	seedCatalog(t, pool)
	repo := NewPlayerRepository(pool)

	hero, err := repo.CurrentHero(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultHeroID, hero)
}
