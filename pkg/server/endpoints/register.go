package endpoints

import (
	"github.com/kestrelsec/passvault/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterPasswordsEndpoints(srv)
	RegisterAccessEndpoints(srv)
	RegisterGroupsEndpoints(srv)
	RegisterApprovalEndpoints(srv)
}
