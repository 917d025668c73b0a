package web

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/common/log"
)

// ErrorResponse : body of every non-2xx reply
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MessageResponse : body of replies that only carry a message
type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(js); err != nil {
		log.Debugf("Unable to write response: %s", err)
	}
}
