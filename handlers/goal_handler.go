package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"congregationAPI/internal/types/goal"
	"congregationAPI/middleware"
	"congregationAPI/services"
)

type GoalHandler struct {
	goalService *services.GoalService
}

func NewGoalHandler(goalService *services.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

// GET /api/v1/goals
func (h *GoalHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	goals, err := h.goalService.List(ctx, userID)
	if err != nil {
		respondWithServiceError(w, err, "load goals")
		return
	}

	respondWithJSON(w, http.StatusOK, goals)
}

// POST /api/v1/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req goal.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.goalService.Create(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, err, "create goal")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// GET /api/v1/goals/{id}
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	view, err := h.goalService.Get(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, err, "load goal")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// PUT /api/v1/goals/{id}/progress
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req goal.ProgressRequest
	if err := decodeJSON(r, &req); err != nil || req.Value == nil {
		respondWithError(w, http.StatusBadRequest, "value is required")
		return
	}

	view, err := h.goalService.UpdateProgress(ctx, userID, mux.Vars(r)["id"], *req.Value)
	if err != nil {
		respondWithServiceError(w, err, "update goal progress")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// POST /api/v1/goals/{id}/progress/increment
func (h *GoalHandler) IncrementProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req goal.IncrementRequest
	if err := decodeJSON(r, &req); err != nil || req.Delta == nil {
		respondWithError(w, http.StatusBadRequest, "delta is required")
		return
	}

	view, err := h.goalService.IncrementProgress(ctx, userID, mux.Vars(r)["id"], *req.Delta)
	if err != nil {
		respondWithServiceError(w, err, "update goal progress")
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// DELETE /api/v1/goals/{id}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	userID, _ := middleware.GetUserID(ctx)
	if err := h.goalService.Delete(ctx, userID, mux.Vars(r)["id"]); err != nil {
		respondWithServiceError(w, err, "delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
