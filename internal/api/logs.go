package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jensholdgaard/wowtools/internal/export"
)

func (h *Handler) handleConsumables(w http.ResponseWriter, r *http.Request) {
	table, err := h.svc.Logs.Usage(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondServiceError(w, r, "consumables", err)
		return
	}
	respondJSON(w, http.StatusOK, table)
}

func (h *Handler) handleConsumablesXLSX(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	table, err := h.svc.Logs.Usage(r.Context(), code)
	if err != nil {
		h.respondServiceError(w, r, "consumables export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.Consumables(&buf, table.Rows, table.Consumables); err != nil {
		h.respondServiceError(w, r, "consumables export", err)
		return
	}
	writeWorkbook(w, fmt.Sprintf("consumables-%s.xlsx", code), &buf)
}

// writeWorkbook sends a rendered workbook as an attachment.
func writeWorkbook(w http.ResponseWriter, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
