package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/thad75/questday/internal/domain"
	"github.com/thad75/questday/internal/logger"
	"github.com/thad75/questday/internal/quest"
)

type QuestHandler struct {
	questService quest.Service
}

func NewQuestHandler(questService quest.Service) *QuestHandler {
	return &QuestHandler{questService: questService}
}

// questBoardResponse is the quest listing payload.
type questBoardResponse struct {
	Quests      []domain.Quest                     `json:"quests"`
	QuestStates map[string]domain.PlayerQuestState `json:"quest_states"`
	Streaks     map[domain.Granularity]int         `json:"streaks"`
	ResetFlags  domain.ResetFlags                  `json:"reset_flags"`
}

// GetQuests returns the user's quest board, resetting stale sets first
// @Summary Get active quests
// @Description Returns the user's active quests across all granularities, regenerating any stale set
// @Tags quests
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} questBoardResponse
// @Failure 400 {object} ErrorResponse
// @Router /quests [get]
func (h *QuestHandler) GetQuests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	state, flags, err := h.questService.GetQuests(ctx, userID)
	if err != nil {
		log.Error("Failed to get quests", "error", err, "user_id", userID)
		status, msg := mapServiceErrorToUserMessage(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, questBoardResponse{
		Quests:      state.ActiveQuests,
		QuestStates: state.PlayerQuestStates,
		Streaks:     state.CurrentStreak,
		ResetFlags:  flags,
	})
}

// Generate forces regeneration of one granularity's quest set
// @Summary Regenerate a quest set
// @Description Replaces the quest set of one granularity with a fresh generation
// @Tags quests
// @Accept json
// @Produce json
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Router /quests/generate [post]
func (h *QuestHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req struct {
		UserID      string             `json:"user_id"`
		Granularity domain.Granularity `json:"granularity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	quests, err := h.questService.Regenerate(ctx, req.UserID, req.Granularity)
	if err != nil {
		log.Error("Failed to regenerate quests", "error", err, "user_id", req.UserID, "granularity", req.Granularity)
		status, msg := mapServiceErrorToUserMessage(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, DataResponse{Message: "Quest set regenerated", Data: quests})
}

// Start marks a quest as active
// @Summary Start a quest
// @Tags quests
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /quests/start [post]
func (h *QuestHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.questService.StartQuest, "Quest started")
}

// Skip marks a quest as skipped
// @Summary Skip a quest
// @Tags quests
// @Accept json
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /quests/skip [post]
func (h *QuestHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.lifecycleAction(w, r, h.questService.SkipQuest, "Quest skipped")
}

func (h *QuestHandler) lifecycleAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, userID, questID string) error,
	message string,
) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req struct {
		UserID  string `json:"user_id"`
		QuestID string `json:"quest_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.QuestID == "" {
		respondError(w, http.StatusBadRequest, "user_id and quest_id are required")
		return
	}

	if err := action(ctx, req.UserID, req.QuestID); err != nil {
		log.Error("Quest lifecycle action failed", "error", err, "user_id", req.UserID, "quest_id", req.QuestID)
		status, msg := mapServiceErrorToUserMessage(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, SuccessResponse{Message: message})
}

// Complete marks a quest completed and grants its reward
// @Summary Complete a quest
// @Description Marks the quest completed, computes the reward, and applies XP (resolving level-ups)
// @Tags quests
// @Accept json
// @Produce json
// @Success 200 {object} quest.CompletionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /quests/complete [post]
func (h *QuestHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req struct {
		UserID           string `json:"user_id"`
		QuestID          string `json:"quest_id"`
		TimeSpentMinutes int    `json:"time_spent_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.QuestID == "" {
		respondError(w, http.StatusBadRequest, "user_id and quest_id are required")
		return
	}

	result, err := h.questService.CompleteQuest(ctx, req.UserID, req.QuestID, req.TimeSpentMinutes)
	if err != nil {
		log.Error("Failed to complete quest", "error", err, "user_id", req.UserID, "quest_id", req.QuestID)
		status, msg := mapServiceErrorToUserMessage(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetProgress returns the user's level and XP
// @Summary Get player progress
// @Tags progress
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} domain.PlayerProgress
// @Failure 400 {object} ErrorResponse
// @Router /progress [get]
func (h *QuestHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	progress, err := h.questService.GetProgress(ctx, userID)
	if err != nil {
		log.Error("Failed to get progress", "error", err, "user_id", userID)
		status, msg := mapServiceErrorToUserMessage(err)
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}
