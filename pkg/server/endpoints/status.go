package endpoints

import (
	"net/http"
	"os"

	"github.com/kestrelsec/passvault/pkg/server"
)

// RegisterStatusEndpoints registers the status endpoint (no auth required)
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("PASSVAULT_VERSION_DISPLAY")
		if version == "" {
			version = "0.1.0"
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"version": version})
	}
}
