package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/theirongolddev/ascendia/internal/pet"
)

// PetResponse is returned by every pet endpoint. OK is false when a
// conditional action such as feeding was declined.
type PetResponse struct {
	OK      bool        `json:"ok"`
	Profile pet.Profile `json:"profile"`
}

type xpRequest struct {
	Amount int  `json:"amount"`
	Silent bool `json:"silent"`
}

type statRequest struct {
	Stat   pet.Stat `json:"stat"`
	Amount int      `json:"amount"`
}

type feedRequest struct {
	Cost int `json:"cost"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type typeRequest struct {
	Type pet.Type `json:"type"`
}

type treatsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

type eventRequest struct {
	Event string `json:"event"`
	pet.EventData
}

func (s *Service) registerPetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/pet", s.handlePet)
	mux.HandleFunc("POST /v1/pet/xp", s.handleXP)
	mux.HandleFunc("POST /v1/pet/stat", s.handleStat)
	mux.HandleFunc("POST /v1/pet/feed", s.handleFeed)
	mux.HandleFunc("POST /v1/pet/play", s.handlePlay)
	mux.HandleFunc("POST /v1/pet/rename", s.handleRename)
	mux.HandleFunc("POST /v1/pet/type", s.handleType)
	mux.HandleFunc("POST /v1/pet/treats", s.handleTreats)
	mux.HandleFunc("POST /v1/pet/events", s.handleEvent)
	mux.HandleFunc("POST /v1/pet/reset", s.handleReset)
}

func (s *Service) handlePet(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, true)
}

func (s *Service) handleXP(w http.ResponseWriter, r *http.Request) {
	var req xpRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.GainXP(r.Context(), req.Amount, req.Silent)
	s.respond(w, true)
}

func (s *Service) handleStat(w http.ResponseWriter, r *http.Request) {
	var req statRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.Stat = pet.Stat(strings.ToLower(string(req.Stat)))
	if !req.Stat.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown stat %q", req.Stat))
		return
	}
	s.engine.UpdateStat(r.Context(), req.Stat, req.Amount)
	s.respond(w, true)
}

func (s *Service) handleFeed(w http.ResponseWriter, r *http.Request) {
	var req feedRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respond(w, s.engine.FeedPet(r.Context(), req.Cost))
}

func (s *Service) handlePlay(w http.ResponseWriter, r *http.Request) {
	if !s.ready(w) {
		return
	}
	s.respond(w, s.engine.Play(r.Context()))
}

func (s *Service) handleRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	s.engine.RenamePet(r.Context(), req.Name)
	s.respond(w, true)
}

func (s *Service) handleType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Type.IsValid() {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown pet type %q", req.Type))
		return
	}
	s.engine.SetPetType(r.Context(), req.Type)
	s.respond(w, true)
}

func (s *Service) handleTreats(w http.ResponseWriter, r *http.Request) {
	var req treatsRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.engine.RewardTreats(r.Context(), req.Amount, req.Reason)
	s.respond(w, true)
}

func (s *Service) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !s.decode(w, r, &req) {
		return
	}
	ev, ok := pet.ParseEvent(req.Event)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown event %q", req.Event))
		return
	}
	s.respond(w, s.engine.ProcessFinancialEvent(r.Context(), ev, req.EventData))
}

func (s *Service) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.ready(w) {
		return
	}
	s.engine.Reset(r.Context())
	s.respond(w, true)
}

// ready rejects requests that arrive before the profile has loaded.
func (s *Service) ready(w http.ResponseWriter) bool {
	if s.engine.IsLoading() {
		writeError(w, http.StatusServiceUnavailable, errors.New("pet profile is still loading"))
		return false
	}
	return true
}

// decode reads an optional JSON body into v. An empty body leaves v zero.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if !s.ready(w) {
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Service) respond(w http.ResponseWriter, ok bool) {
	p, loaded := s.engine.Profile()
	if !loaded {
		writeError(w, http.StatusServiceUnavailable, errors.New("pet profile is still loading"))
		return
	}
	writeJSON(w, http.StatusOK, PetResponse{OK: ok, Profile: p})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
