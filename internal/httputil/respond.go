package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ChatSuccess wraps a completed chat turn.
type ChatSuccess struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

func WriteJSON(w http.ResponseWriter, requestID string, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, requestID string, statusCode int, message string) {
	WriteJSON(w, requestID, statusCode, ErrorResponse{Error: message})
}

func WriteUnauthorized(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusUnauthorized, message)
}

func WriteBadRequest(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusBadRequest, message)
}

func WriteRateLimited(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusTooManyRequests, message)
}

func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	WriteError(w, requestID, http.StatusInternalServerError, message)
}

// WriteChatResponse emits the success envelope for a chat turn.
func WriteChatResponse(w http.ResponseWriter, requestID, answer string) {
	WriteJSON(w, requestID, http.StatusOK, ChatSuccess{Success: true, Response: answer})
}
