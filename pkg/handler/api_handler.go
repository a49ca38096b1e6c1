package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sonastea/HeroClicker/pkg/entity"
	"github.com/sonastea/HeroClicker/pkg/logger"
	"github.com/sonastea/HeroClicker/pkg/repository"
	"github.com/sonastea/HeroClicker/pkg/service"
)

type APIHandler struct {
	gameService service.GameService
}

func NewAPIHandler(gameService service.GameService) *APIHandler {
	return &APIHandler{gameService: gameService}
}

// Request field names are the wire contract shared with the game client; the
// identifier fields are pointers so an absent field can be told apart from a
// zero.
type UpdateItemLevelRequest struct {
	UserID        *int64   `json:"userId"`
	HeroID        *int64   `json:"heroId"`
	ItemID        *int64   `json:"itemId"`
	CurrentLevel  *int     `json:"currentLevel"`
	CurrentValue  *float64 `json:"currentValue"`
	Cost          int64    `json:"cost"`
	CurrentPrice  float64  `json:"currentPrice"`
	MaxHealth     *float64 `json:"maxHealth"`
	HealthRegen   *float64 `json:"healthRegen"`
	MaxEnergy     *float64 `json:"maxEnergy"`
	EnergyRegen   *float64 `json:"energyRegen"`
	Damage        *float64 `json:"damage"`
	MovementSpeed *float64 `json:"movementSpeed"`
	Vampirism     *float64 `json:"vampirism"`
	CurrentIncome float64  `json:"currentIncome"`
}

type UpdateUserMoneyRequest struct {
	UserID *int64 `json:"userId"`
	HeroID *int64 `json:"heroId,omitempty"`
	Income int64  `json:"income"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HeroItemsResponse struct {
	UserID int64              `json:"userId"`
	HeroID int64              `json:"heroId"`
	Items  entity.ItemCatalog `json:"items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func completed(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "completed"})
}

// writeError maps service errors onto the HTTP error taxonomy: invalid input
// 400, unknown hero 404, everything else an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "hero not found"})
	default:
		logger.Error("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// queryUserID parses the required userId query parameter.
func queryUserID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

// queryHeroID parses the optional heroId query parameter. A present but
// non-numeric value is an error, signalled by the second return.
func queryHeroID(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("heroId")
	if raw == "" {
		return nil, true
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}

	return &id, true
}

// UpdateItemLevel handles an item purchase: money reconciliation, item
// progress, and hero stat overrides in one store transaction.
func (h *APIHandler) UpdateItemLevel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req UpdateItemLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON format"})
		return
	}
	defer r.Body.Close()

	if req.UserID == nil || req.HeroID == nil || req.ItemID == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "userId, heroId and itemId are required"})
		return
	}

	// The stat overrides replace the whole user_hero row, so a body missing
	// any of them would zero stats the player already has. Reject instead.
	if req.MaxHealth == nil || req.HealthRegen == nil || req.MaxEnergy == nil ||
		req.EnergyRegen == nil || req.Damage == nil || req.MovementSpeed == nil ||
		req.Vampirism == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "hero stat fields are required"})
		return
	}

	// The client omits level and value on a first-time purchase.
	currentLevel := 1
	if req.CurrentLevel != nil {
		currentLevel = *req.CurrentLevel
	}
	currentValue := 1.0
	if req.CurrentValue != nil {
		currentValue = *req.CurrentValue
	}

	purchase := entity.PurchaseState{
		UserID:       *req.UserID,
		HeroID:       *req.HeroID,
		ItemID:       *req.ItemID,
		CurrentLevel: currentLevel,
		CurrentValue: currentValue,
		Cost:         req.Cost,
		CurrentPrice: req.CurrentPrice,
		Stats: entity.HeroStats{
			MaxHealth:     *req.MaxHealth,
			HealthRegen:   *req.HealthRegen,
			MaxEnergy:     *req.MaxEnergy,
			EnergyRegen:   *req.EnergyRegen,
			Damage:        *req.Damage,
			MovementSpeed: *req.MovementSpeed,
			Vampirism:     *req.Vampirism,
		},
		CurrentIncome: req.CurrentIncome,
	}

	if err := h.gameService.ApplyPurchase(r.Context(), purchase); err != nil {
		writeError(w, err)
		return
	}

	completed(w)
}

// UpdateUserMoney handles an earn event: money reconciliation plus a
// one-time income amount, no cost.
func (h *APIHandler) UpdateUserMoney(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var req UpdateUserMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON format"})
		return
	}
	defer r.Body.Close()

	if req.UserID == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "userId is required"})
		return
	}

	if err := h.gameService.ApplyEarning(r.Context(), *req.UserID, req.HeroID, req.Income); err != nil {
		writeError(w, err)
		return
	}

	completed(w)
}

// HeroData handles retrieving the merged hero view. A supplied heroId also
// switches the player's current-hero selection.
func (h *APIHandler) HeroData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "userId must be a number"})
		return
	}

	heroID, ok := queryHeroID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "heroId must be a number"})
		return
	}

	profile, err := h.gameService.HeroData(r.Context(), userID, heroID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HeroItems handles retrieving the item catalog with the player's purchase
// progress merged in, grouped by shop category.
func (h *APIHandler) HeroItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	userID, ok := queryUserID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "userId must be a number"})
		return
	}

	heroID, ok := queryHeroID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "heroId must be a number"})
		return
	}

	hero, items, err := h.gameService.HeroItems(r.Context(), userID, heroID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, HeroItemsResponse{
		UserID: userID,
		HeroID: hero,
		Items:  items,
	})
}

// Leaderboard handles retrieving the richest players.
func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	var limit int64
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a number"})
			return
		}
		limit = parsed
	}

	entries, err := h.gameService.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
