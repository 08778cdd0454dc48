package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/handlers"
	"github.com/Dosada05/competition-manager/middleware"
	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/repositories"
	"github.com/Dosada05/competition-manager/routes"
	"github.com/Dosada05/competition-manager/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("handler-secret")

type apiEnv struct {
	router http.Handler
	hub    *brackets.Hub
	token  string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := brackets.NewHub(logger)

	teamRepo := repositories.NewMemoryTeamRepository()
	svc := services.NewCompetitionService(
		repositories.NewMemoryCompetitionRepository(),
		teamRepo,
		nil, nil, hub, nil, logger,
	)

	router := chi.NewRouter()
	routes.SetupRoutes(router,
		handlers.NewCompetitionHandler(svc, logger),
		handlers.NewTeamHandler(services.NewTeamService(teamRepo, logger), logger),
		handlers.NewWebSocketHandler(hub, svc, []string{"*"}, logger),
		routes.Options{JWTSecret: secret, AllowedOrigins: []string{"*"}},
	)

	token, err := middleware.NewToken(secret, "organizer-1", models.RoleOrganizer, nil)
	require.NoError(t, err)

	return &apiEnv{router: router, hub: hub, token: token}
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, authorized bool) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			buf = strings.NewReader(b)
		default:
			js, err := json.Marshal(b)
			require.NoError(t, err)
			buf = bytes.NewReader(js)
		}
	}
	req := httptest.NewRequest(method, path, buf)
	if authorized {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (e *apiEnv) createPoolPlay(t *testing.T) models.Competition {
	t.Helper()
	rec, body := e.do(t, http.MethodPost, "/competitions", services.CreateCompetitionInput{
		Name:   "Spring League",
		Format: models.FormatPoolPlay,
		Pools:  []services.PoolInput{{Name: "Pool A", TeamIDs: []string{"a", "b", "c"}}},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Competition](t, body["competition"])
}

func TestCompetitionAPI_PoolPlayFlow(t *testing.T) {
	e := newAPIEnv(t)
	c := e.createPoolPlay(t)
	assert.Equal(t, "spring-league", c.Slug)

	rec, body := e.do(t, http.MethodGet, "/competitions/"+c.ID, nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, c.ID, decode[models.Competition](t, body["competition"]).ID)

	rec, body = e.do(t, http.MethodGet, "/competitions", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Competition](t, body["competitions"]), 1)

	rec, body = e.do(t, http.MethodPost, "/competitions/"+c.ID+"/pools/"+c.Pools[0].ID+"/schedule", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	matchups := decode[[]models.Matchup](t, body["matchups"])
	require.Len(t, matchups, 3)

	first := matchups[0]
	rec, body = e.do(t, http.MethodPost, "/competitions/"+c.ID+"/results", services.RecordResultInput{
		MatchupID: first.ID, Kind: models.MatchupKindPool, HomeScore: 15, AwayScore: 9,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recorded := decode[models.Matchup](t, body["matchup"])
	assert.Equal(t, models.MatchupCompleted, recorded.Status)

	rec, body = e.do(t, http.MethodGet, "/competitions/"+c.ID+"/standings", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[services.StandingsView](t, body["standings"])
	require.Len(t, view.Pools, 1)
	assert.Equal(t, *first.HomeTeamID, view.Pools[0].Ranking[0])

	// пул уже с результатами
	rec, _ = e.do(t, http.MethodPost, "/competitions/"+c.ID+"/schedule", nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/competitions/"+c.ID+"/bracket", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(t, http.MethodDelete, "/competitions/"+c.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = e.do(t, http.MethodGet, "/competitions/"+c.ID, nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompetitionAPI_Errors(t *testing.T) {
	e := newAPIEnv(t)
	c := e.createPoolPlay(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		authorized bool
		status     int
	}{
		{"create without token", http.MethodPost, "/competitions", `{"name":"x"}`, false, http.StatusUnauthorized},
		{"unknown field", http.MethodPost, "/competitions", `{"title":"x"}`, true, http.StatusBadRequest},
		{"invalid competition", http.MethodPost, "/competitions", `{"name":"","format":"bracket"}`, true, http.StatusUnprocessableEntity},
		{"missing competition", http.MethodGet, "/competitions/nope", nil, false, http.StatusNotFound},
		{"bad limit", http.MethodGet, "/competitions?limit=-1", nil, false, http.StatusBadRequest},
		{"missing matchup id", http.MethodPost, "/competitions/" + c.ID + "/results", `{"kind":"pool"}`, true, http.StatusUnprocessableEntity},
		{"unknown matchup", http.MethodPost, "/competitions/" + c.ID + "/results", services.RecordResultInput{MatchupID: "zzz", Kind: models.MatchupKindPool, HomeScore: 1, AwayScore: 0}, true, http.StatusNotFound},
		{"negative score", http.MethodPost, "/competitions/" + c.ID + "/results", services.RecordResultInput{MatchupID: "zzz", Kind: models.MatchupKindPool, HomeScore: -1, AwayScore: 0}, true, http.StatusUnprocessableEntity},
		{"unknown pool", http.MethodPost, "/competitions/" + c.ID + "/pools/zzz/schedule", nil, true, http.StatusNotFound},
		{"unknown season", http.MethodGet, "/seasons/2020/standings", nil, false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := e.do(t, tt.method, tt.path, tt.body, tt.authorized)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, body, "error")
		})
	}
}

func TestCompetitionAPI_ViewerCannotMutate(t *testing.T) {
	e := newAPIEnv(t)
	viewer, err := middleware.NewToken(secret, "viewer-1", models.RoleViewer, nil)
	require.NoError(t, err)
	e.token = viewer

	rec, _ := e.do(t, http.MethodPost, "/competitions", `{"name":"x"}`, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebSocket_ReceivesStandingsUpdate(t *testing.T) {
	e := newAPIEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go e.hub.Run(ctx)

	c := e.createPoolPlay(t)
	rec, body := e.do(t, http.MethodPost, "/competitions/"+c.ID+"/schedule", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	matchups := decode[[]models.Matchup](t, body["matchups"])

	server := httptest.NewServer(e.router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/competitions/" + c.ID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	room := brackets.CompetitionRoom(c.ID)
	require.Eventually(t, func() bool { return e.hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	rec, _ = e.do(t, http.MethodPost, "/competitions/"+c.ID+"/results", services.RecordResultInput{
		MatchupID: matchups[0].ID, Kind: models.MatchupKindPool, HomeScore: 15, AwayScore: 13,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg brackets.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, brackets.MessageStandingsUpdated, msg.Type)
	assert.Equal(t, room, msg.RoomID)
}

func TestWebSocket_UnknownCompetition(t *testing.T) {
	e := newAPIEnv(t)
	rec, _ := e.do(t, http.MethodGet, "/ws/competitions/missing", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamAPI(t *testing.T) {
	e := newAPIEnv(t)

	rec, body := e.do(t, http.MethodPost, "/teams", services.CreateTeamInput{ID: "a", Name: "Alpha"}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Alpha", decode[models.Team](t, body["team"]).Name)

	rec, _ = e.do(t, http.MethodPost, "/teams", services.CreateTeamInput{Name: "Alpha"}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/teams", services.CreateTeamInput{Name: "Beta"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = e.do(t, http.MethodGet, "/teams/a", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a", decode[models.Team](t, body["team"]).ID)

	rec, _ = e.do(t, http.MethodGet, "/teams/zzz", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = e.do(t, http.MethodGet, "/teams?ids=a,zzz", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Team](t, body["teams"]), 1)
}
