package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/competition-manager/middleware"
	"github.com/Dosada05/competition-manager/services"
)

type TeamHandler struct {
	teamService services.TeamService
	logger      *slog.Logger
}

func NewTeamHandler(ts services.TeamService, logger *slog.Logger) *TeamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TeamHandler{teamService: ts, logger: logger}
}

// CreateTeam обрабатывает POST /teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, r, http.StatusUnauthorized, "failed to identify current user")
		return
	}

	team, err := h.teamService.Create(r.Context(), input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeamByID обрабатывает GET /teams/{teamID}
func (h *TeamHandler) GetTeamByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetByID(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTeams обрабатывает GET /teams?ids=a,b,c
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	teams, err := h.teamService.ListByIDs(r.Context(), ids)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
