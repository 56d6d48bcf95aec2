package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse стандартный формат для ошибок валидации
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ValidateRequest проверяет корректность запроса перед передачей его обработчику
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				errResp := ErrorResponse{Error: "Invalid Content-Type, expected application/json"}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(errResp)
				return
			}
		}

		// Максимальный размер тела запроса (1MB — тела здесь маленькие)
		const maxSize = 1 << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}
