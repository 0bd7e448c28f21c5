package api

import (
	"net/http"

	"github.com/jensholdgaard/wowtools/internal/gear"
)

// PieceSummary is a gear search hit.
type PieceSummary struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Slot         string       `json:"slot"`
	ItemLevel    int          `json:"item_level"`
	Quality      gear.Quality `json:"quality"`
	QualityColor string       `json:"quality_color"`
	IconURL      string       `json:"icon_url"`
}

// PieceDetail is a piece with its scored stat table.
type PieceDetail struct {
	Piece        gear.Piece      `json:"piece"`
	IconURL      string          `json:"icon_url"`
	QualityColor string          `json:"quality_color"`
	Evaluation   gear.Evaluation `json:"evaluation"`
}

func summarize(p gear.Piece) PieceSummary {
	return PieceSummary{
		ID:           p.ID,
		Name:         p.Name,
		Slot:         p.Slot,
		ItemLevel:    p.ItemLevel,
		Quality:      p.Quality,
		QualityColor: gear.QualityColor(p.Quality),
		IconURL:      gear.IconURL(p.IconPath),
	}
}

func (h *Handler) handleGearSearch(w http.ResponseWriter, r *http.Request) {
	pieces := h.svc.Gear.Search(r.URL.Query().Get("query"), limitParam(r, 50))
	out := make([]PieceSummary, len(pieces))
	for i, p := range pieces {
		out[i] = summarize(p)
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGearSlots returns the paper-doll rows with the pieces for each.
func (h *Handler) handleGearSlots(w http.ResponseWriter, _ *http.Request) {
	type slot struct {
		Slot   string         `json:"slot"`
		Pieces []PieceSummary `json:"pieces"`
	}
	out := make([]slot, 0, len(gear.Slots))
	for _, s := range gear.Slots {
		pieces := h.svc.Gear.BySlot(s)
		row := slot{Slot: s, Pieces: make([]PieceSummary, len(pieces))}
		for i, p := range pieces {
			row.Pieces[i] = summarize(p)
		}
		out = append(out, row)
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGearPiece(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Gear.ByID(id)
	if err != nil {
		h.respondServiceError(w, r, "gear piece", err)
		return
	}
	respondJSON(w, http.StatusOK, PieceDetail{
		Piece:        p,
		IconURL:      gear.IconURL(p.IconPath),
		QualityColor: gear.QualityColor(p.Quality),
		Evaluation:   gear.Evaluate(p, h.svc.Weights),
	})
}
