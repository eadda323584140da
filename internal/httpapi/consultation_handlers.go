package httpapi

import (
	"errors"
	"io"
	"net/http"

	"evolve-engine/internal/consult"

	"go.uber.org/zap"
)

type ConsultationHandler struct {
	Intake consult.Intake
	Log    *zap.Logger
}

func (h ConsultationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req consult.Request
	// An empty body is treated as an empty request.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if missing := req.Missing(); len(missing) > 0 {
		WriteJSON(w, http.StatusBadRequest, APIError{Error: "Missing required fields", Missing: missing})
		return
	}

	if err := h.Intake.Submit(r.Context(), req); err != nil {
		h.Log.Error("consultation intake failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		WriteError(w, http.StatusInternalServerError, "Failed to submit consultation request")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}
