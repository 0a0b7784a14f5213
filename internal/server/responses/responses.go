// Package responses defines the uniform JSON response envelope shared by
// every API endpoint, for success and failure alike.
package responses

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Status     bool   `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// WriteJSON writes a success envelope. A nil data value renders as an empty
// list so clients never see null.
func WriteJSON(w http.ResponseWriter, code int, message string, data any) {
	if data == nil {
		data = []any{}
	}
	payload := Envelope{
		Status:     true,
		StatusCode: code,
		Message:    message,
		Data:       data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 envelope.
func OK(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusCreated, message, data)
}
