package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/competition-manager/repositories"
	"github.com/Dosada05/competition-manager/services"
)

const defaultListLimit = 20

type CompetitionHandler struct {
	competitionService services.CompetitionService
	logger             *slog.Logger
}

func NewCompetitionHandler(cs services.CompetitionService, logger *slog.Logger) *CompetitionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompetitionHandler{competitionService: cs, logger: logger}
}

// CreateHandler обрабатывает POST /competitions
func (h *CompetitionHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateCompetitionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /competitions/{competitionID}
func (h *CompetitionHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	competition, err := h.competitionService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competition": competition}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /competitions
func (h *CompetitionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListCompetitionsFilter{Limit: defaultListLimit}
	query := r.URL.Query()

	if seasonID := strings.TrimSpace(query.Get("season_id")); seasonID != "" {
		filter.SeasonID = &seasonID
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
		filter.Limit = limit
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
		filter.Offset = offset
	}

	competitions, err := h.competitionService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"competitions": competitions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /competitions/{competitionID}
func (h *CompetitionHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.competitionService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SchedulePoolHandler обрабатывает POST /competitions/{competitionID}/pools/{poolID}/schedule
func (h *CompetitionHandler) SchedulePoolHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchups, err := h.competitionService.SchedulePool(r.Context(), id, poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScheduleAllHandler обрабатывает POST /competitions/{competitionID}/schedule
func (h *CompetitionHandler) ScheduleAllHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchups, err := h.competitionService.ScheduleAllPools(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /competitions/{competitionID}/standings
func (h *CompetitionHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.competitionService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler обрабатывает POST /competitions/{competitionID}/bracket
func (h *CompetitionHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchups, err := h.competitionService.GenerateBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matchups": matchups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler обрабатывает GET /competitions/{competitionID}/bracket
func (h *CompetitionHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.competitionService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler обрабатывает POST /competitions/{competitionID}/results
func (h *CompetitionHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.MatchupID) == "" {
		unprocessableResponse(w, r, "matchup_id is required")
		return
	}

	matchup, err := h.competitionService.RecordResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matchup": matchup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SummaryHandler обрабатывает GET /competitions/{competitionID}/summary
func (h *CompetitionHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.competitionService.ResultsSummary(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SeasonStandingsHandler обрабатывает GET /seasons/{seasonID}/standings
func (h *CompetitionHandler) SeasonStandingsHandler(w http.ResponseWriter, r *http.Request) {
	seasonID, err := getIDFromURL(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.competitionService.SeasonStandings(r.Context(), seasonID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
