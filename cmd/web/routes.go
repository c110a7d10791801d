package main

import (
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/rumble-raffle/internal/config"
	"github.com/AdamBeresnev/rumble-raffle/internal/httputil"
	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/middleware"
	"github.com/AdamBeresnev/rumble-raffle/internal/service"
	"github.com/AdamBeresnev/rumble-raffle/internal/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type services struct {
	leagues     *service.LeagueService
	events      *service.EventService
	draws       *service.DrawService
	tracker     *service.TrackerService
	leaderboard *service.LeaderboardService
}

func newServices(database *sqlx.DB, cfg *config.Config) *services {
	leagueStore := store.NewLeagueStore(database)
	eventStore := store.NewEventStore(database)
	wrestlerStore := store.NewWrestlerStore(database)
	trackerOpts := service.TrackerOptions{
		UniquePlacements:    cfg.UniquePlacements,
		UniqueWrestlerNames: cfg.UniqueWrestlerNames,
	}

	return &services{
		leagues:     service.NewLeagueService(leagueStore, eventStore),
		events:      service.NewEventService(eventStore, wrestlerStore),
		draws:       service.NewDrawService(leagueStore, league.DefaultRand),
		tracker:     service.NewTrackerService(leagueStore, eventStore, wrestlerStore, trackerOpts),
		leaderboard: service.NewLeaderboardService(leagueStore, eventStore),
	}
}

func newRouter(svc *services, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/events", func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateEventInput
		if err := httputil.ReadJSON(w, r, &in); err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}
		event, err := svc.events.CreateEvent(r.Context(), in)
		if err != nil {
			httputil.Error(w, "Failed to create event", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, event)
	})

	r.Patch("/events/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		eventID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.BadRequest(w, "Invalid event ID", err)
			return
		}
		var body struct {
			Status league.EventStatus `json:"status"`
		}
		if err := httputil.ReadJSON(w, r, &body); err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}
		event, err := svc.events.SetEventStatus(r.Context(), eventID, body.Status)
		if err != nil {
			httputil.Error(w, "Failed to update event status", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, event)
	})

	r.Get("/wrestlers", func(w http.ResponseWriter, r *http.Request) {
		names, err := svc.events.SearchWrestlers(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			httputil.Error(w, "Failed to search wrestlers", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string][]string{"wrestlers": names})
	})

	r.Post("/leagues", func(w http.ResponseWriter, r *http.Request) {
		var in service.CreateLeagueInput
		if err := httputil.ReadJSON(w, r, &in); err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}
		l, err := svc.leagues.CreateLeague(r.Context(), in)
		if err != nil {
			httputil.Error(w, "Failed to create league", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, l)
	})

	r.Route("/leagues/{id}", func(r chi.Router) {
		r.Use(middleware.LoadLeague(svc.leagues))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			details, err := svc.leagues.GetLeagueDetails(r.Context(), leagueID)
			if err != nil {
				httputil.Error(w, "Failed to get league", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, details)
		})

		r.Post("/draw", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			assignments, err := svc.draws.Draw(r.Context(), leagueID)
			if err != nil {
				httputil.Error(w, "Failed to draw league", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string][]league.Assignment{"assignments": assignments})
		})

		r.Get("/entrants", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			snapshot, err := svc.tracker.GetEntrants(r.Context(), leagueID)
			if err != nil {
				httputil.Error(w, "Failed to get entrants", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, snapshot)
		})

		r.Patch("/entrants/{number}", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			number, err := strconv.Atoi(chi.URLParam(r, "number"))
			if err != nil {
				httputil.BadRequest(w, "Invalid entrant number", err)
				return
			}
			var patch service.EntrantPatch
			if err := httputil.ReadJSON(w, r, &patch); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			entrant, err := svc.tracker.UpdateEntrant(r.Context(), leagueID, number, patch)
			if err != nil {
				httputil.Error(w, "Failed to update entrant", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, entrant)
		})

		r.Get("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			board, err := svc.leaderboard.GetLeaderboard(r.Context(), leagueID)
			if err != nil {
				httputil.Error(w, "Failed to get leaderboard", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, board)
		})

		r.Post("/participants", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			var body struct {
				DisplayName         string `json:"display_name"`
				RequestedEntryCount int    `json:"requested_entry_count"`
			}
			if err := httputil.ReadJSON(w, r, &body); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			p, err := svc.leagues.AddParticipant(r.Context(), leagueID, body.DisplayName, body.RequestedEntryCount)
			if err != nil {
				httputil.Error(w, "Failed to add participant", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, p)
		})

		r.Patch("/participants/{pid}", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			participantID, err := uuid.Parse(chi.URLParam(r, "pid"))
			if err != nil {
				httputil.BadRequest(w, "Invalid participant ID", err)
				return
			}
			var body struct {
				RequestedEntryCount *int `json:"requested_entry_count"`
			}
			if err := httputil.ReadJSON(w, r, &body); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			if body.RequestedEntryCount == nil {
				httputil.BadRequest(w, "requested_entry_count is required", nil)
				return
			}
			if err := svc.leagues.SetEntryCount(r.Context(), leagueID, participantID, *body.RequestedEntryCount); err != nil {
				httputil.Error(w, "Failed to update participant", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Delete("/participants/{pid}", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			participantID, err := uuid.Parse(chi.URLParam(r, "pid"))
			if err != nil {
				httputil.BadRequest(w, "Invalid participant ID", err)
				return
			}
			if err := svc.leagues.RemoveParticipant(r.Context(), leagueID, participantID); err != nil {
				httputil.Error(w, "Failed to remove participant", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/distribute", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			dist, err := svc.leagues.DistributeEvenly(r.Context(), leagueID)
			if err != nil {
				httputil.Error(w, "Failed to distribute entries", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, dist)
		})

		r.Post("/complete", func(w http.ResponseWriter, r *http.Request) {
			leagueID, _ := middleware.GetLeagueIDFromContext(r.Context())
			if err := svc.leagues.CompleteLeague(r.Context(), leagueID); err != nil {
				httputil.Error(w, "Failed to complete league", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}
