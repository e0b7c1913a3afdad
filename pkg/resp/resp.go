package resp

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteJSONResponse - writes v as JSON with the given status
func WriteJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError - {"error": msg}
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSONResponse(w, status, map[string]string{"error": msg})
}

// Marshal - JSON encoding shared with the event stream
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}
