package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/identity"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/server"
	"github.com/kestrelsec/passvault/pkg/vault/access"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// RegisterAccessEndpoints registers grant and revocation endpoints
func RegisterAccessEndpoints(s *server.Server) {
	router := s.Router.PathPrefix("/passwords/{id}/access").Subrouter()
	router.Use(s.Identify.Middleware)

	router.HandleFunc("", handleGrantAccess(s)).Methods("POST")
	router.HandleFunc("", handleRevokeAllAccess(s)).Methods("DELETE")
	router.HandleFunc("/{group}", handleRevokeAccess(s)).Methods("DELETE")

	roles := s.Router.PathPrefix("/passwords/{id}/roles").Subrouter()
	roles.Use(s.Identify.Middleware)
	roles.HandleFunc("", handleAddRole(s)).Methods("POST")
}

type grantRequest struct {
	GroupID     string `json:"group_id"`
	AllowModify bool   `json:"allow_modify"`
	Replace     bool   `json:"replace"`
}

// handleGrantAccess shares an item with another group. The caller's own
// access supplies the item keys; granting modify requires holding modify.
func handleGrantAccess(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		itemID := mux.Vars(r)["id"]

		var body grantRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.GroupID == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "group_id is required")
			return
		}

		group, err := s.Groups.FetchGroup(body.GroupID)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "no such group")
			return
		}

		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		gac, err := s.Resolver.Grant(acc, group, itemID, true, body.AllowModify, !body.Replace)
		if err != nil {
			switch {
			case errors.Is(err, access.ErrNoModify):
				respondWithError(w, http.StatusForbidden, "modify capability not granted")
			case errors.Is(err, store.ErrConflict):
				respondWithError(w, http.StatusConflict, "group already has access")
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		// Replace swaps the stored envelopes in one transaction, so a grant
		// level change never leaves a gap.
		if body.Replace {
			if err := s.Access.Update(gac); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		s.Audit.Emit(audit.AccessEvent{UserID: id.UserID, ItemID: itemID, GroupID: group.GroupID, Granted: true})
		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"group_id":   group.GroupID,
			"item_id":    itemID,
			"can_modify": gac.HasModify(),
		})
	}
}

func handleRevokeAccess(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		vars := mux.Vars(r)
		itemID := vars["id"]
		groupID := vars["group"]

		// Revocation needs modify-level standing on the item.
		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil || !acc.CanModify() {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		if err := s.Access.Delete(&store.GAC{GroupID: groupID, ItemID: itemID}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.Audit.Record(audit.LevelConfiguration, id.UserID, itemID,
			"Access for group "+groupID+" was revoked", false)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRevokeAllAccess removes every grant on the item except the
// administrative group's.
func handleRevokeAllAccess(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		itemID := mux.Vars(r)["id"]

		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil || !acc.CanModify() {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		if err := s.Access.DeleteAllForItem(itemID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.Audit.Record(audit.LevelConfiguration, id.UserID, itemID,
			"All group access was revoked", false)
		w.WriteHeader(http.StatusNoContent)
	}
}

type addRoleRequest struct {
	ActorID string `json:"actor_id"`
	Role    string `json:"role"`
}

func handleAddRole(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		itemID := mux.Vars(r)["id"]

		var body addRoleRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.Role != model.ApproverRole && body.Role != model.HistoryViewerRole {
			respondWithError(w, http.StatusUnprocessableEntity, "unknown role")
			return
		}

		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil || !acc.CanModify() {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		if err := s.Access.AddRole(itemID, body.ActorID, body.Role); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.Audit.Record(audit.LevelConfiguration, id.UserID, itemID,
			"Role "+body.Role+" was granted to "+body.ActorID, false)
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"item_id":  itemID,
			"actor_id": body.ActorID,
			"role":     body.Role,
		})
	}
}
