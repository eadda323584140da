package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// NewMux returns the raw mux so main() can attach extra routes.
func NewMux(d Deps) *http.ServeMux {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	ch := ConsultationHandler{Intake: d.Intake, Log: log.Named("consultation")}
	mux.HandleFunc("/api/consultation", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ch.Submit,
	}))

	eh := EstimateHandler{Pricing: d.Pricing}
	mux.HandleFunc("/api/estimate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: eh.Estimate,
	}))
	mux.HandleFunc("/api/estimate/pricing", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.Table,
	}))

	return mux
}

// Handler wraps h in the standard middleware chain.
func Handler(h http.Handler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")
	return Chain(h, RequestID, Recover(log), AccessLog(log), Cors)
}
