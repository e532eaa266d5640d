package handlers

import (
	"errors"
	"net/http"

	"chess-club-server/middleware"
	"chess-club-server/repositories"
	"chess-club-server/services"
)

type UserHandler struct {
	userRepo      repositories.UserRepository
	pointsService services.PointsService
}

func NewUserHandler(userRepo repositories.UserRepository, pointsService services.PointsService) *UserHandler {
	return &UserHandler{
		userRepo:      userRepo,
		pointsService: pointsService,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			notFoundResponse(w, r)
			return
		}
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMyPoints returns the caller's club-point history, newest first.
func (h *UserHandler) GetMyPoints(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	entries, err := h.pointsService.HistoryByUser(r.Context(), callerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"points_history": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
