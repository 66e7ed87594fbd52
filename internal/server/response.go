package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// StatusConflict is the code answered when a database or table already
// exists, or a row could not be inserted. Clients match on the status text
// "203 Conflict" in the envelope.
const StatusConflict = http.StatusNonAuthoritativeInfo

// envelope is the JSON body of every response.
type envelope struct {
	Status     string `json:"status"`
	Response   any    `json:"response"`
	Database   string `json:"database,omitempty"`
	Table      string `json:"table,omitempty"`
	Message    string `json:"message,omitempty"`
	CheckField string `json:"check_field,omitempty"`
	CheckValue string `json:"check_value,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// statusLine renders a code the way envelopes report it, e.g. "200 OK".
func statusLine(code int) string {
	if code == StatusConflict {
		return "203 Conflict"
	}

	return strconv.Itoa(code) + " " + http.StatusText(code)
}

func writeJSON(w http.ResponseWriter, code int, body envelope) {
	data, err := json.Marshal(body)
	if err != nil {
		code = http.StatusInternalServerError
		data = []byte(`{"status":"500 Internal Server Error","response":null}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(data, '\n'))
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, envelope{
		Status:   statusLine(http.StatusNotFound),
		Response: nil,
		Message:  "Path not found.",
	})
}

// writeBadRequest answers 400 and echoes what the client sent.
func writeBadRequest(w http.ResponseWriter, body []byte, message string) {
	var data any = string(body)
	if json.Valid(body) {
		data = json.RawMessage(body)
	}

	writeJSON(w, http.StatusBadRequest, envelope{
		Status:   statusLine(http.StatusBadRequest),
		Response: []any{},
		Message:  message,
		Data:     data,
	})
}
