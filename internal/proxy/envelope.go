package proxy

import (
	"encoding/json"
	"net/http"

	"addictiontube/internal/search"
)

// Envelope messages.
const (
	MsgMissingParams = "Missing query or category"
	MsgTransport     = "CURL Error"
)

const contentTypeJSON = "application/json"

// WriteError writes an ErrorEnvelope. details is omitted when empty.
func WriteError(w http.ResponseWriter, status int, message, details string) {
	writeRawJSON(w, status, errorBody(message, details))
}

func errorBody(message, details string) []byte {
	b, err := json.Marshal(search.ErrorPayload{Error: message, Details: details})
	if err != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return b
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
