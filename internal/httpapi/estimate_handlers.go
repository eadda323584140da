package httpapi

import (
	"errors"
	"net/http"

	"evolve-engine/internal/estimate"
)

type EstimateHandler struct {
	Pricing estimate.Pricing
}

func (h EstimateHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var in estimate.Input
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.Pricing.Estimate(in)
	var ie *estimate.InputError
	switch {
	case errors.As(err, &ie):
		WriteError(w, http.StatusBadRequest, ie.Error())
		return
	case err != nil:
		WriteError(w, http.StatusInternalServerError, "Failed to compute estimate")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Table exposes the active pricing so the site can render its options.
func (h EstimateHandler) Table(w http.ResponseWriter, r *http.Request) {
	p := h.Pricing
	WriteJSON(w, http.StatusOK, map[string]any{
		"tiers":       p.Tiers,
		"complexity":  p.Complexity,
		"timeline":    p.Timeline,
		"integration": p.Integration,
		"training":    p.Training,
		"support":     p.Support,
		"scale":       p.Scale,
	})
}
