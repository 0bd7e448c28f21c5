package api

import (
	"net/http"
	"strconv"

	"github.com/jensholdgaard/wowtools/internal/money"
)

// MoneyResponse is a copper amount in every display form.
type MoneyResponse struct {
	Price int64       `json:"price"`
	Coins money.Coins `json:"coins"`
	Text  string      `json:"text"`
	Full  string      `json:"full"`
}

func (h *Handler) handleMoneyFormat(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("price")
	price, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "price must be an integer amount of copper")
		return
	}
	respondJSON(w, http.StatusOK, MoneyResponse{
		Price: price,
		Coins: money.Decompose(price),
		Text:  money.Format(price),
		Full:  money.FormatFull(price),
	})
}
