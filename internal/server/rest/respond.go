package rest

import (
	"encoding/json"
	"net/http"
)

// messageBody is the shape of every error and acknowledgement response.
type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// decodeJSON reads a JSON body into dst. A missing or malformed body leaves
// dst zero-valued, so the caller's required-field checks report it.
func decodeJSON(r *http.Request, dst any) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}
