package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"congregationAPI/internal/types/challenge"
	"congregationAPI/middleware"
	"congregationAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

type catalogResponse struct {
	Version    string               `json:"version"`
	Challenges []challenge.Template `json:"challenges"`
}

// GET /api/v1/challenges/catalog
func (h *ChallengeHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	cat := h.challengeService.Catalog()
	respondWithJSON(w, http.StatusOK, catalogResponse{
		Version:    cat.Version(),
		Challenges: cat.ListTemplates(),
	})
}

// GET /api/v1/challenges/available
func (h *ChallengeHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	templates, err := h.challengeService.Available(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "load available challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, templates)
}

// GET /api/v1/challenges
func (h *ChallengeHandler) GetMyChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	enrollments, err := h.challengeService.ListForUser(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "load challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, enrollments)
}

// POST /api/v1/challenges/{templateId}/join
func (h *ChallengeHandler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	templateID := mux.Vars(r)["templateId"]

	enrollment, err := h.challengeService.Join(ctx, userID, templateID)
	if err != nil {
		respondWithServiceError(w, err, "join challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, enrollment)
}

// GET /api/v1/challenges/enrollments/{id}
func (h *ChallengeHandler) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	view, err := h.challengeService.Get(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "load challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// POST /api/v1/challenges/enrollments/{id}/complete
func (h *ChallengeHandler) CompleteEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	view, err := h.challengeService.Complete(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "complete challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}
