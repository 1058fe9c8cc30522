package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/server/models"
	"github.com/dmitrijs2005/authentix/internal/server/orchestrator"
)

type sampleRequest struct {
	UserID string `json:"user_id"`
	Sample string `json:"sample"`
}

type codeRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Confidence *float64 `json:"confidence,omitempty"`
	Message    string   `json:"message,omitempty"`
}

type factorStatusResponse struct {
	Modality   string     `json:"modality"`
	IsEnrolled bool       `json:"is_enrolled"`
	EnrolledAt *time.Time `json:"enrolled_at,omitempty"`
}

type factorsResponse struct {
	UserID       string                 `json:"user_id"`
	Factors      []factorStatusResponse `json:"factors"`
	FullySecured bool                   `json:"fully_secured"`
}

type attemptResponse struct {
	ID         string    `json:"id"`
	Modality   string    `json:"modality"`
	Success    bool      `json:"success"`
	Confidence *float64  `json:"confidence,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	State  string `json:"state"`
	Token  string `json:"token,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Verification
// outcomes never reach this path: a clean negative is a 200 with
// success=false, so the status code cannot be used as an oracle.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrExtraction),
		errors.Is(err, common.ErrDimensionMismatch),
		errors.Is(err, common.ErrDegenerateVector):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "could not process sample"})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, common.ErrInsufficientEnrollment):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "insufficient enrollment"})
	case errors.Is(err, common.ErrWrongStep):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "submission does not match the current step"})
	case errors.Is(err, common.ErrLockedOut):
		writeJSON(w, http.StatusLocked, errorResponse{Error: "locked out"})
	case errors.Is(err, common.ErrCancelled):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "cancelled"})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func decodeSample(w http.ResponseWriter, req *sampleRequest) ([]byte, bool) {
	if req.UserID == "" || req.Sample == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and sample are required"})
		return nil, false
	}
	sample, err := base64.StdEncoding.DecodeString(req.Sample)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sample must be base64-encoded"})
		return nil, false
	}
	return sample, true
}

func pathModality(r *http.Request) models.Modality {
	// The route pattern already constrains the value.
	m, _ := models.ParseModality(mux.Vars(r)["modality"])
	return m
}

func (s *HTTPServer) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sample, ok := decodeSample(w, &req)
	if !ok {
		return
	}

	if err := s.enrollment.Enroll(r.Context(), req.UserID, pathModality(r), sample); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sample, ok := decodeSample(w, &req)
	if !ok {
		return
	}

	result, err := s.verification.Verify(r.Context(), req.UserID, pathModality(r), sample)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := verifyResponse{Success: result.Matched, Confidence: result.Confidence}
	if !result.Matched {
		// One generic message for every negative outcome.
		resp.Message = "verification failed"
		resp.Confidence = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleCodeSet(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and code are required"})
		return
	}

	if err := s.codes.Set(r.Context(), req.UserID, []byte(req.Code)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *HTTPServer) handleCodeVerify(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and code are required"})
		return
	}

	ok, err := s.codes.Verify(r.Context(), req.UserID, []byte(req.Code))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := verifyResponse{Success: ok}
	if !ok {
		resp.Message = "verification failed"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleFactors(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	statuses, err := s.factors.Statuses(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := factorsResponse{UserID: userID, FullySecured: true}
	for _, st := range statuses {
		if !st.IsEnrolled {
			resp.FullySecured = false
		}
		resp.Factors = append(resp.Factors, factorStatusResponse{
			Modality:   string(st.Modality),
			IsEnrolled: st.IsEnrolled,
			EnrolledAt: st.EnrolledAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleAttempts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	list, err := s.factors.Attempts(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]attemptResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, attemptResponse{
			ID:         a.ID,
			Modality:   string(a.Modality),
			Success:    a.Success,
			Confidence: a.Confidence,
			Metadata:   a.Metadata,
			CreatedAt:  a.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func sessionToResponse(s *orchestrator.Session) sessionResponse {
	return sessionResponse{ID: s.ID, UserID: s.UserID, State: string(s.State), Token: s.Token}
}

func (s *HTTPServer) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id is required"})
		return
	}

	session, err := s.sequences.Start(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(session))
}

func (s *HTTPServer) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	session, err := s.sequences.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *HTTPServer) handleSessionSample(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Modality string `json:"modality"`
		Sample   string `json:"sample"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	modality, err := models.ParseModality(req.Modality)
	if err != nil || modality == models.ModalityCode {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "modality must be a biometric factor"})
		return
	}
	sample, err := base64.StdEncoding.DecodeString(req.Sample)
	if err != nil || len(sample) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sample must be base64-encoded"})
		return
	}

	session, err := s.sequences.SubmitSample(r.Context(), mux.Vars(r)["id"], modality, sample)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *HTTPServer) handleSessionCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "code is required"})
		return
	}

	session, err := s.sequences.SubmitCode(r.Context(), mux.Vars(r)["id"], []byte(req.Code))
	if err != nil && !errors.Is(err, common.ErrLockedOut) {
		writeError(w, err)
		return
	}
	// Lockout is reported through the session state with a 200 so the
	// client can render the terminal state it just caused.
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}

func (s *HTTPServer) handleSessionCancel(w http.ResponseWriter, r *http.Request) {
	session, err := s.sequences.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(session))
}
