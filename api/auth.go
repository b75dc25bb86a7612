package api

import (
	"crypto/subtle"
	"net/http"
)

// basicAuth guards every endpoint with a single user/password pair,
// compared in constant time.
func basicAuth(user, password string) func(http.Handler) http.Handler {
	userBytes := []byte(user)
	passwordBytes := []byte(password)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqUser, reqPassword, _ := req.BasicAuth()

			if subtle.ConstantTimeCompare(userBytes, []byte(reqUser))+
				subtle.ConstantTimeCompare(passwordBytes, []byte(reqPassword)) == 2 {
				next.ServeHTTP(w, req)

				return
			}

			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Authentication is required", http.StatusUnauthorized)
		})
	}
}
