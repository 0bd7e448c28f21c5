package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type serversResponse struct {
	Primary   serverInfo `json:"primary"`
	Secondary serverInfo `json:"secondary"`
}

type serverInfo struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// WatchRequest adds an item to a watchlist.
type WatchRequest struct {
	ItemID int `json:"item_id" validate:"required,gt=0"`
}

func (h *Handler) handleServers(w http.ResponseWriter, _ *http.Request) {
	p, s := h.svc.Market.Servers()
	respondJSON(w, http.StatusOK, serversResponse{
		Primary:   serverInfo{Slug: p.Slug, Label: p.Label},
		Secondary: serverInfo{Slug: s.Slug, Label: s.Label},
	})
}

// handleSearch debounces per session. Clients without a session key share
// one per remote address.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session := strings.TrimSpace(q.Get("session"))
	if session == "" {
		session = r.RemoteAddr
	}
	items, err := h.svc.Market.Search(r.Context(), session, q.Get("query"))
	if err != nil {
		h.respondServiceError(w, r, "search", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) handleListing(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "itemID")
	if !ok {
		return
	}
	l, err := h.svc.Market.Listing(r.Context(), chi.URLParam(r, "server"), id)
	if err != nil {
		h.respondServiceError(w, r, "listing", err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "itemID")
	if !ok {
		return
	}
	c, err := h.svc.Market.Compare(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, "compare", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Market.Watchlist(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		h.respondServiceError(w, r, "watchlist", err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleWatch(w http.ResponseWriter, r *http.Request) {
	var req WatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.svc.Market.Watch(r.Context(), chi.URLParam(r, "owner"), req.ItemID); err != nil {
		h.respondServiceError(w, r, "watch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnwatch(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "itemID")
	if !ok {
		return
	}
	if err := h.svc.Market.Unwatch(r.Context(), chi.URLParam(r, "owner"), id); err != nil {
		h.respondServiceError(w, r, "unwatch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWatchlistListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.Market.RestoreWatchlist(r.Context(), chi.URLParam(r, "owner"))
	if err != nil {
		h.respondServiceError(w, r, "restore watchlist", err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}
