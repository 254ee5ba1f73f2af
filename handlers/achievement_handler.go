package handlers

import (
	"context"
	"net/http"

	"congregationAPI/middleware"
	"congregationAPI/services"
)

type AchievementHandler struct {
	achievementService *services.AchievementService
}

func NewAchievementHandler(achievementService *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService}
}

// GET /api/v1/achievements
func (h *AchievementHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	ledger, err := h.achievementService.List(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "load achievements")
		return
	}

	respondWithJSON(w, http.StatusOK, ledger)
}
