package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/csv2db/internal/logging"
)

// APIKeyHeader carries the client's key.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the X-API-Key header against
// keys. With no keys configured every request passes through.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				logging.FromContext(r.Context()).Warn("auth: missing API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusUnauthorized, "missing API key", "AUTH001")
				return
			}

			if !isValidAPIKey(apiKey, keys) {
				logging.FromContext(r.Context()).Warn("auth: invalid API key",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				writeAuthError(w, http.StatusForbidden, "invalid API key", "AUTH002")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","message":"` + message + `","code":"` + code + `"}`))
}

// isValidAPIKey compares key against every configured key in constant time,
// so the duration does not reveal which key (if any) matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
