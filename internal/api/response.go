package api

import (
	"encoding/json"
	"net/http"
)

// Facade status values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// Fixed facade messages.
const (
	messageTimeout          = "请求超时"
	messageBusy             = "服务繁忙"
	messageInternalError    = "internal server error"
	messageNotFound         = "not found"
	messageMethodNotAllowed = "method not allowed"
	welcomeText             = "Welcome to the IoT Device Control Server!"
)

// StatusBody is the JSON body of every facade response.
type StatusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		//nolint:errcheck // Best-effort write to response; connection may be closed
		enc.Encode(v)
	}
}

// writeStatus writes a facade body with HTTP 200.
func writeStatus(w http.ResponseWriter, status, message string) {
	writeJSON(w, http.StatusOK, StatusBody{Status: status, Message: message})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, StatusBody{Status: statusError, Message: messageNotFound})
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, StatusBody{Status: statusError, Message: messageMethodNotAllowed})
}
