package api

import (
	"fmt"
	"net/http"

	"github.com/jensholdgaard/wowtools/internal/gems"
)

// GemView is a catalog entry as shown in the picker.
type GemView struct {
	Name      string   `json:"name"`
	ShortName string   `json:"short_name"`
	IconURL   string   `json:"icon_url"`
	Labels    []string `json:"labels"`
}

// GemRequest builds request text for a gear piece. Gems are exact names and
// may repeat. Each search term adds the single gem it matches; they follow
// the named gems.
type GemRequest struct {
	Gear     string   `json:"gear" validate:"required"`
	Gems     []string `json:"gems,omitempty" validate:"omitempty,dive,required"`
	Searches []string `json:"searches,omitempty" validate:"omitempty,dive,required"`
}

// GemRequestResponse carries the rendered request.
type GemRequestResponse struct {
	Text string `json:"text"`
}

func (h *Handler) handleGemSearch(w http.ResponseWriter, r *http.Request) {
	found := h.svc.Gems.Search(r.URL.Query().Get("query"))
	out := make([]GemView, len(found))
	for i, g := range found {
		out[i] = GemView{Name: g.Name, ShortName: g.ShortName(), IconURL: g.IconURL(), Labels: g.Labels()}
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGemGear(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Gems.SearchGear(r.URL.Query().Get("query"), limitParam(r, 0)))
}

func (h *Handler) handleGemRequest(w http.ResponseWriter, r *http.Request) {
	var req GemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sel := gems.Selection{Gear: req.Gear}
	for _, name := range req.Gems {
		g, err := h.svc.Gems.ByName(name)
		if err != nil {
			h.respondServiceError(w, r, "gem request", err)
			return
		}
		if err := sel.Add(g); err != nil {
			h.respondServiceError(w, r, "gem request", err)
			return
		}
	}
	for _, term := range req.Searches {
		if err := sel.QuickAdd(h.svc.Gems.Search(term)); err != nil {
			h.respondServiceError(w, r, "gem request", fmt.Errorf("search %q: %w", term, err))
			return
		}
	}
	text, err := sel.Request()
	if err != nil {
		h.respondServiceError(w, r, "gem request", err)
		return
	}
	respondJSON(w, http.StatusOK, GemRequestResponse{Text: text})
}
