package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires all API routes. Biometric routes constrain {modality} to the
// embedding-backed factors; the code factor has its own endpoints.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/{modality:face|voice|gesture}/enroll", s.handleEnroll).Methods("POST")
	api.HandleFunc("/{modality:face|voice|gesture}/verify", s.handleVerify).Methods("POST")

	api.HandleFunc("/code/set", s.handleCodeSet).Methods("POST")
	api.HandleFunc("/code/verify", s.handleCodeVerify).Methods("POST")

	api.HandleFunc("/users/{id}/factors", s.handleFactors).Methods("GET")
	api.HandleFunc("/users/{id}/attempts", s.requireToken(s.handleAttempts)).Methods("GET")

	api.HandleFunc("/auth/sessions", s.handleSessionStart).Methods("POST")
	api.HandleFunc("/auth/sessions/{id}", s.handleSessionGet).Methods("GET")
	api.HandleFunc("/auth/sessions/{id}/sample", s.handleSessionSample).Methods("POST")
	api.HandleFunc("/auth/sessions/{id}/code", s.handleSessionCode).Methods("POST")
	api.HandleFunc("/auth/sessions/{id}/cancel", s.handleSessionCancel).Methods("POST")

	return r
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
