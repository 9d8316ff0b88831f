// Package responders writes HTTP response bodies in the formats the API
// serves.
package responders

import (
	"encoding/json"
	"net/http"
)

// JSON writes payload as an application/json body with the given status.
// A nil payload sends headers only. HTML escaping is off so addresses and
// URLs in content bodies arrive unmangled.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}
