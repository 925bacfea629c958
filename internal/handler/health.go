package handler

import "net/http"

// HandleHealth answers liveness probes. The engine is stateless across
// requests, so a reachable process is a healthy one.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
