package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jensholdgaard/wowtools/internal/export"
	"github.com/jensholdgaard/wowtools/internal/roster"
)

// CharacterRequest registers a guild member.
type CharacterRequest struct {
	Name   string `json:"name" validate:"required,max=12"`
	Race   string `json:"race" validate:"required,race"`
	Gender string `json:"gender" validate:"required,gender"`
	Class  string `json:"class" validate:"required,wowclass"`
	Spec   string `json:"spec" validate:"required"`
}

// CreateRosterRequest starts a plan. A zero size uses the default.
type CreateRosterRequest struct {
	Name      string `json:"name" validate:"required"`
	CreatedBy string `json:"created_by"`
	Size      int    `json:"size" validate:"omitempty,oneof=10 25"`
}

// DropRequest drops a guild member at a planner position.
type DropRequest struct {
	Character string  `json:"character" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// DropResponse is the plan after a drop plus the regions it hit.
type DropResponse struct {
	Roster  roster.Snapshot `json:"roster"`
	Regions []roster.Region `json:"regions"`
}

// ResizeRequest changes the raid size.
type ResizeRequest struct {
	Size int `json:"size" validate:"required,oneof=10 25"`
}

func (h *Handler) handleCharacters(w http.ResponseWriter, r *http.Request) {
	chars, err := h.svc.Roster.Characters(r.Context())
	if err != nil {
		h.respondServiceError(w, r, "characters", err)
		return
	}
	respondJSON(w, http.StatusOK, chars)
}

func (h *Handler) handleRegisterCharacter(w http.ResponseWriter, r *http.Request) {
	var req CharacterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	c := roster.Character(req)
	if err := h.svc.Roster.RegisterCharacter(r.Context(), c); err != nil {
		h.respondServiceError(w, r, "register character", err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleRosters(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Roster.List())
}

func (h *Handler) handleLayout(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Roster.Layout())
}

func (h *Handler) handleCreateRoster(w http.ResponseWriter, r *http.Request) {
	var req CreateRosterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, err := h.svc.Roster.Create(r.Context(), req.Name, req.CreatedBy, req.Size)
	if err != nil {
		h.respondServiceError(w, r, "create roster", err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleRoster(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Roster.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, "roster", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	var req DropRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, hits, err := h.svc.Roster.Drop(r.Context(), chi.URLParam(r, "id"), req.Character, roster.Point{X: req.X, Y: req.Y})
	if err != nil {
		h.respondServiceError(w, r, "drop", err)
		return
	}
	respondJSON(w, http.StatusOK, DropResponse{Roster: snap, Regions: hits})
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "next", h.svc.Roster.Next)
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "back", h.svc.Roster.Back)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, "reset", h.svc.Roster.Reset)
}

func (h *Handler) step(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id string) (roster.Snapshot, error)) {
	snap, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, op, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleResize(w http.ResponseWriter, r *http.Request) {
	var req ResizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	snap, err := h.svc.Roster.Resize(r.Context(), chi.URLParam(r, "id"), req.Size)
	if err != nil {
		h.respondServiceError(w, r, "resize", err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Roster.Statistics(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, "roster stats", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleStatsXLSX(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.svc.Roster.Statistics(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "roster export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.Roster(&buf, stats); err != nil {
		h.respondServiceError(w, r, "roster export", err)
		return
	}
	writeWorkbook(w, fmt.Sprintf("roster-%s.xlsx", id), &buf)
}
