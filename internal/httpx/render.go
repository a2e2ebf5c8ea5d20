package httpx

import (
	"encoding/json"
	"net/http"
)

// Renderer turns a page name plus data into a response. Templating is an
// external concern; the built-in renderer emits JSON so the backend stands on
// its own.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data map[string]any)
}

type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	body := map[string]any{"page": page}
	for k, v := range data {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
