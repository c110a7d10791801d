package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/rumble-raffle/internal/config"
	"github.com/AdamBeresnev/rumble-raffle/internal/db"
	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB))

	return newRouter(newServices(database, &config.Config{}), []string{"*"})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestLeagueLifecycle(t *testing.T) {
	h := setupTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/events", map[string]any{"name": "Royal Rumble 2025 (Men)", "year": 2025})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[service.EventWithPool](t, rec)
	require.Len(t, event.Entrants, 30)

	rec = doJSON(t, h, http.MethodPost, "/leagues", map[string]any{
		"name":     "Office Rumble",
		"event_id": event.ID,
		"buy_in":   "5",
		"mode":     "points_based",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[league.League](t, rec)
	base := "/leagues/" + created.ID.String()

	var participants []league.Participant
	for _, name := range []string{"Alice", "Bob"} {
		rec = doJSON(t, h, http.MethodPost, base+"/participants", map[string]any{"display_name": name, "requested_entry_count": 10})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		participants = append(participants, decode[league.Participant](t, rec))
	}

	// 20 of 30 requested
	rec = doJSON(t, h, http.MethodPost, base+"/draw", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decode[errorResponse](t, rec)
	assert.Equal(t, "validation", errBody.Error.Code)
	assert.Contains(t, errBody.Error.Message, "deficit of 10")

	rec = doJSON(t, h, http.MethodPatch, base+"/participants/"+participants[1].ID.String(), map[string]any{"requested_entry_count": 20})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	// The slug works wherever the id does
	rec = doJSON(t, h, http.MethodGet, "/leagues/"+created.Slug, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	details := decode[service.LeagueDetails](t, rec)
	assert.Equal(t, 30, details.Requested)
	assert.Equal(t, "150", details.PrizePool.String())

	rec = doJSON(t, h, http.MethodPost, base+"/draw", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	drawn := decode[map[string][]league.Assignment](t, rec)["assignments"]
	require.Len(t, drawn, 30)

	rec = doJSON(t, h, http.MethodPost, base+"/draw", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decode[errorResponse](t, rec).Error.Code)

	rec = doJSON(t, h, http.MethodDelete, base+"/participants/"+participants[0].ID.String(), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Give the owner of #1 the win and 15th place with another entry
	owner := drawn[0].ParticipantID
	second := 0
	for _, a := range drawn[1:] {
		if a.ParticipantID == owner {
			second = a.EntrantNumber
			break
		}
	}
	require.NotZero(t, second)
	spare := 2
	if spare == second {
		spare = 3
	}
	spareURL := fmt.Sprintf("%s/entrants/%d", base, spare)

	rec = doJSON(t, h, http.MethodPatch, base+"/entrants/1", map[string]any{"wrestler_name": "Cody Rhodes", "final_placement": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = doJSON(t, h, http.MethodPatch, fmt.Sprintf("%s/entrants/%d", base, second), map[string]any{
		"status":          "eliminated",
		"eliminated_by":   1,
		"final_placement": 15,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entrant := decode[league.Entrant](t, rec)
	assert.True(t, entrant.IsEliminated)
	assert.Equal(t, league.EliminatedByNumber(1), entrant.EliminatedBy)

	rec = doJSON(t, h, http.MethodPatch, spareURL, map[string]any{"status": "eliminated", "eliminated_by": spare})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, h, http.MethodPatch, spareURL, map[string]any{"status": "active"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = doJSON(t, h, http.MethodPatch, base+"/entrants/99", map[string]any{"final_placement": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodPatch, spareURL, map[string]any{"eliminated_by": "nobody"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodGet, base+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[service.Leaderboard](t, rec)
	require.Len(t, board.Standings, 2)
	assert.Equal(t, owner, board.Standings[0].ParticipantID)
	assert.Equal(t, 46, board.Standings[0].Score)
	assert.Equal(t, 0, board.Standings[1].Score)

	rec = doJSON(t, h, http.MethodGet, base+"/entrants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snapshot := decode[service.EntrantsSnapshot](t, rec)
	require.Len(t, snapshot.Pools, 1)
	assert.Equal(t, 29, snapshot.Pools[0].Remaining)
	assert.Equal(t, "Cody Rhodes", snapshot.Pools[0].Entrants[0].WrestlerName)

	rec = doJSON(t, h, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDistributeAndRemove(t *testing.T) {
	h := setupTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/events", map[string]any{"name": "Battle Royal", "year": 2025, "size": 10})
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode[service.EventWithPool](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/leagues", map[string]any{"name": "Pals", "event_id": event.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	base := "/leagues/" + decode[league.League](t, rec).ID.String()

	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C"} {
		rec = doJSON(t, h, http.MethodPost, base+"/participants", map[string]any{"display_name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[league.Participant](t, rec).ID)
	}

	rec = doJSON(t, h, http.MethodPost, base+"/distribute", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dist := decode[service.Distribution](t, rec)
	assert.Equal(t, 3, dist.Share)
	assert.Equal(t, 1, dist.Remainder)

	rec = doJSON(t, h, http.MethodDelete, base+"/participants/"+ids[2].String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, base+"/participants/"+ids[2].String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, h, http.MethodDelete, base+"/participants/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventsAndWrestlers(t *testing.T) {
	h := setupTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/events", map[string]any{"name": "Royal Rumble", "year": 2025, "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/events", map[string]any{"name": "Royal Rumble", "year": 2025})
	require.Equal(t, http.StatusCreated, rec.Code)
	event := decode[service.EventWithPool](t, rec)

	rec = doJSON(t, h, http.MethodPatch, "/events/"+event.ID.String()+"/status", map[string]any{"status": "live"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, league.EventLive, decode[league.Event](t, rec).Status)

	rec = doJSON(t, h, http.MethodPatch, "/events/"+event.ID.String()+"/status", map[string]any{"status": "upcoming"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/wrestlers?q=punk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"CM Punk"}, decode[map[string][]string](t, rec)["wrestlers"])

	rec = doJSON(t, h, http.MethodGet, "/leagues/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[errorResponse](t, rec).Error.Code)
}
