package handlers

import (
	"errors"
	"net/http"

	"chess-club-server/middleware"
	"chess-club-server/models"
	"chess-club-server/services"
)

type RoundHandler struct {
	roundService services.RoundService
}

func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

// GenerateRounds creates the next batch of Swiss rounds for a tournament.
func (h *RoundHandler) GenerateRounds(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := getIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Rounds int `json:"rounds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.roundService.GenerateRounds(r.Context(), tournamentID, callerID, input.Rounds)
	if err != nil {
		// A failure mid-generation still leaves earlier rounds committed;
		// those are not reported here, the client refetches the tournament.
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetMatchResult records or corrects the outcome of a match.
func (h *RoundHandler) SetMatchResult(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := getIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Result string `json:"result"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Result == "" {
		badRequestResponse(w, r, errors.New("result is required"))
		return
	}

	err = h.roundService.SetMatchResult(r.Context(), tournamentID, matchID, callerID, models.MatchResult(input.Result))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "result recorded"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeletePairings removes every generated round and resets participant stats.
func (h *RoundHandler) DeletePairings(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.CallerID(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}
	tournamentID, err := getIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roundService.DeletePairings(r.Context(), tournamentID, callerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
