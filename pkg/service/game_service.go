package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sonastea/HeroClicker/pkg/entity"
	"github.com/sonastea/HeroClicker/pkg/logger"
	"github.com/sonastea/HeroClicker/pkg/repository"
)

// ErrInvalidInput marks validation failures detected before any store write.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// GameService defines the interface for the game API business logic. A nil
// heroID resolves to the player's current hero, falling back to the default
// hero when the player has no selection yet.
type GameService interface {
	ApplyEarning(ctx context.Context, userID int64, heroID *int64, income int64) error
	ApplyPurchase(ctx context.Context, purchase entity.PurchaseState) error
	HeroData(ctx context.Context, userID int64, heroID *int64) (*entity.HeroProfile, error)
	HeroItems(ctx context.Context, userID int64, heroID *int64) (int64, entity.ItemCatalog, error)
	Leaderboard(ctx context.Context, limit int64) ([]entity.LeaderboardEntry, error)
}

// gameService implements GameService
type gameService struct {
	playerRepo repository.PlayerRepository
	boardRepo  repository.LeaderboardRepository
}

// NewGameService creates a new game service
func NewGameService(playerRepo repository.PlayerRepository, boardRepo repository.LeaderboardRepository) GameService {
	return &gameService{
		playerRepo: playerRepo,
		boardRepo:  boardRepo,
	}
}

// resolveHero returns the requested hero id or, when absent, the player's
// current selection.
func (s *gameService) resolveHero(ctx context.Context, userID int64, heroID *int64) (int64, error) {
	if heroID != nil {
		if *heroID <= 0 {
			return 0, fmt.Errorf("%w: heroId must be positive", ErrInvalidInput)
		}
		return *heroID, nil
	}

	current, err := s.playerRepo.CurrentHero(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve current hero: %w", err)
	}

	return current, nil
}

// recordBalance pushes the reconciled balance to the leaderboard. Best
// effort: a board failure never fails the request that earned the coins.
func (s *gameService) recordBalance(ctx context.Context, userID, coins int64) {
	if err := s.boardRepo.RecordBalance(ctx, userID, coins); err != nil {
		logger.Warn("Leaderboard update failed for user %d: %v", userID, err)
	}
}

// ApplyEarning reconciles accrued passive income for the player and adds a
// one-time income amount. The income feeds the balance only; the stored
// income rate is untouched.
func (s *gameService) ApplyEarning(ctx context.Context, userID int64, heroID *int64, income int64) error {
	if userID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}
	if income < 0 {
		return fmt.Errorf("%w: income must not be negative", ErrInvalidInput)
	}

	hero, err := s.resolveHero(ctx, userID, heroID)
	if err != nil {
		return err
	}

	balance, err := s.playerRepo.ApplyEarning(ctx, userID, hero, income)
	if err != nil {
		return fmt.Errorf("failed to apply earning: %w", err)
	}

	s.recordBalance(ctx, userID, balance)
	return nil
}

// ApplyPurchase validates and applies an item purchase: money reconciliation
// with the cost subtracted, item progress, and hero stat overrides, all in
// one store transaction. The cost is not floor-checked against the balance;
// the client decides affordability.
func (s *gameService) ApplyPurchase(ctx context.Context, purchase entity.PurchaseState) error {
	if purchase.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}
	if purchase.HeroID <= 0 {
		return fmt.Errorf("%w: heroId must be positive", ErrInvalidInput)
	}
	if purchase.ItemID <= 0 {
		return fmt.Errorf("%w: itemId must be positive", ErrInvalidInput)
	}
	if purchase.Cost < 0 {
		return fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	}
	if purchase.CurrentLevel < 0 {
		return fmt.Errorf("%w: currentLevel must not be negative", ErrInvalidInput)
	}
	if purchase.CurrentIncome < 0 {
		return fmt.Errorf("%w: currentIncome must not be negative", ErrInvalidInput)
	}

	balance, err := s.playerRepo.ApplyPurchase(ctx, purchase)
	if err != nil {
		return fmt.Errorf("failed to apply purchase: %w", err)
	}

	s.recordBalance(ctx, purchase.UserID, balance)
	return nil
}

// HeroData returns the merged hero view. Supplying a hero id also switches
// the player's current-hero selection to it.
func (s *gameService) HeroData(ctx context.Context, userID int64, heroID *int64) (*entity.HeroProfile, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	hero, err := s.resolveHero(ctx, userID, heroID)
	if err != nil {
		return nil, err
	}

	if heroID != nil {
		if err := s.playerRepo.SelectHero(ctx, userID, hero); err != nil {
			return nil, fmt.Errorf("failed to switch hero: %w", err)
		}
	}

	profile, err := s.playerRepo.GetHeroProfile(ctx, userID, hero)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// HeroItems returns the full item catalog with the player's purchase
// progress merged in, grouped by shop category, plus the resolved hero id.
// Supplying a hero id switches the selection, same as HeroData.
func (s *gameService) HeroItems(ctx context.Context, userID int64, heroID *int64) (int64, entity.ItemCatalog, error) {
	if userID <= 0 {
		return 0, nil, fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	hero, err := s.resolveHero(ctx, userID, heroID)
	if err != nil {
		return 0, nil, err
	}

	if heroID != nil {
		if err := s.playerRepo.SelectHero(ctx, userID, hero); err != nil {
			return 0, nil, fmt.Errorf("failed to switch hero: %w", err)
		}
	}

	catalog, err := s.playerRepo.GetItemCatalog(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	return hero, catalog, nil
}

// Leaderboard returns the richest players, defaulting to the top 10.
func (s *gameService) Leaderboard(ctx context.Context, limit int64) ([]entity.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	entries, err := s.boardRepo.TopBalances(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}
