package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"stackup/internal/catalog"
	"stackup/internal/config"
	"stackup/internal/engine"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	cfg  config.APIConfig
	log  *slog.Logger
	game *engine.Service
	mux  *chi.Mux
}

func New(cfg config.APIConfig, logger *slog.Logger, gameSvc *engine.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:  cfg,
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/games", s.handleStartGame)
		r.Get("/games/{id}", s.handleGetState)
		r.Post("/games/{id}/choices", s.handleSubmitChoice)
		r.Post("/games/{id}/event-choices", s.handleSubmitEventChoice)
		r.Get("/games/{id}/score", s.handleScore)
	})
}

// gameView is the transport shape: raw state plus the catalog content the
// client needs to render the current decision.
type gameView struct {
	State *engine.GameState `json:"state"`
	Turn  *turnView         `json:"turn,omitempty"`
	Event *eventView        `json:"event,omitempty"`
}

type turnView struct {
	Number  int              `json:"number"`
	Title   string           `json:"title"`
	Text    string           `json:"text"`
	Choices []catalog.Choice `json:"choices"`
}

type eventView struct {
	ID       string                `json:"id"`
	Kind     catalog.EventKind     `json:"kind"`
	Severity string                `json:"severity,omitempty"`
	Title    string                `json:"title"`
	Text     string                `json:"text"`
	Choices  []catalog.EventChoice `json:"choices"`
}

func (s *Server) view(g *engine.GameState) gameView {
	v := gameView{State: g}
	cat := s.game.Catalog()

	if g.PendingEvent != nil {
		if ev, ok := cat.Event(g.PendingEvent.EventID); ok {
			ew := eventView{
				ID:       ev.ID,
				Kind:     ev.Kind,
				Severity: ev.Severity,
				Title:    ev.Title,
				Text:     ev.Text,
			}
			for _, ec := range ev.Choices {
				if infraGateMet(g, ec.RequiresInfrastructure) {
					ew.Choices = append(ew.Choices, ec)
				}
			}
			v.Event = &ew
		}
		return v
	}

	if !g.Status.Terminal() {
		if t, ok := cat.Turn(g.CurrentTurn); ok {
			v.Turn = &turnView{
				Number:  t.Number,
				Title:   t.Title,
				Text:    t.Text,
				Choices: t.Choices,
			}
		}
	}
	return v
}

func infraGateMet(g *engine.GameState, required []string) bool {
	for _, id := range required {
		if !g.HasInfra(id) {
			return false
		}
	}
	return true
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Difficulty string  `json:"difficulty"`
		Seed       *uint64 `json:"seed,omitempty"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	difficulty, err := engine.ParseDifficulty(strings.ToUpper(strings.TrimSpace(in.Difficulty)))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	g, err := s.game.StartGame(r.Context(), difficulty, in.Seed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view(g))
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(g))
}

func (s *Server) handleSubmitChoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ChoiceIDs []string `json:"choice_ids"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.game.SubmitChoice(r.Context(), chi.URLParam(r, "id"), in.ChoiceIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(g))
}

func (s *Server) handleSubmitEventChoice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ChoiceID string `json:"choice_id"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.game.SubmitEventChoice(r.Context(), chi.URLParam(r, "id"), in.ChoiceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(g))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	g, err := s.game.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var quizBonus int64
	if raw := strings.TrimSpace(r.URL.Query().Get("quiz_bonus")); raw != "" {
		quizBonus, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid quiz_bonus")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game_id": g.ID,
		"status":  g.Status,
		"score":   engine.Score(g, quizBonus),
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidDifficulty),
		errors.Is(err, engine.ErrInvalidChoice),
		errors.Is(err, engine.ErrNoChoice),
		errors.Is(err, engine.ErrTooManyChoices),
		errors.Is(err, engine.ErrInvalidEventChoice),
		errors.Is(err, engine.ErrNoEventPending):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, engine.ErrEventPending),
		errors.Is(err, engine.ErrGameAlreadyTerminal),
		errors.Is(err, engine.ErrConcurrentModification):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
