// Package api exposes the catalog query engine over HTTP. Every endpoint
// answers with the universal envelope {"info": {...}, "data": {...}};
// errors travel as info.error with a matching HTTP status.
package api

import (
	"encoding/json"
	"net/http"
)

// Response is the universal envelope shared by every endpoint.
type Response struct {
	Info map[string]interface{} `json:"info"`
	Data interface{}            `json:"data"`
}

// buildResponse assembles an envelope. Nil sections render as empty objects.
func buildResponse(info map[string]interface{}, data interface{}) Response {
	if info == nil {
		info = map[string]interface{}{}
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return Response{Info: info, Data: data}
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError writes an error envelope with the message in info.error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, buildResponse(map[string]interface{}{"error": message}, nil))
}
