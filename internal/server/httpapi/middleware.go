package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/authentix/internal/common"
	"github.com/dmitrijs2005/authentix/internal/server/auth"
)

// requireToken guards audit reads: the request must carry a session token
// minted by a completed authentication sequence.
func (s *HTTPServer) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing token"})
			return
		}

		if _, err := auth.GetUserIDFromToken(token, s.jwtSecret); err != nil {
			writeError(w, err)
			return
		}

		next(w, r)
	}
}
