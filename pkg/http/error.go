package http

import (
	"encoding/json"
	"net/http"
)

// ErrorBody - тело ответа с ошибкой
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse отправляет JSON ошибку с кодом статуса
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: message})
}

// JSONResponse отправляет JSON ответ с кодом статуса
func JSONResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
