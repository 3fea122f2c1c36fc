package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/identity"
	"github.com/kestrelsec/passvault/pkg/server"
	"github.com/kestrelsec/passvault/pkg/vault/access"
)

// RegisterGroupsEndpoints registers group membership endpoints
func RegisterGroupsEndpoints(s *server.Server) {
	router := s.Router.PathPrefix("/groups").Subrouter()
	router.Use(s.Identify.Middleware)

	router.HandleFunc("/{id}/members", handleAddMember(s)).Methods("POST")
	router.HandleFunc("/{id}/members/{user}", handleRemoveMember(s)).Methods("DELETE")
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// handleAddMember enrolls a user into a group. The caller sponsors the new
// member: the group key is recovered through the caller's own membership and
// re-wrapped for the newcomer.
func handleAddMember(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		groupID := mux.Vars(r)["id"]

		var body addMemberRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}

		group, err := s.Groups.FetchGroup(groupID)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "no such group")
			return
		}

		user, err := s.Passwords.FetchUser(body.UserID)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "no such user")
			return
		}

		if err := s.Resolver.AddMember(id.Ring, id.UserID, id.UserKey, group, user); err != nil {
			if errors.Is(err, access.ErrNoAccess) {
				respondWithError(w, http.StatusForbidden, "not a member of the group")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.Audit.Record(audit.LevelConfiguration, id.UserID, "",
			"User "+user.UserID+" was added to group "+group.GroupID, false)
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"group_id": group.GroupID,
			"user_id":  user.UserID,
		})
	}
}

// handleRemoveMember revokes a membership. Future resolutions through the
// group stop; key material already unwrapped elsewhere is unaffected.
func handleRemoveMember(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		vars := mux.Vars(r)
		groupID := vars["id"]
		userID := vars["user"]

		// Only members of a group may manage its roster.
		if _, err := s.Resolver.GroupKey(id.Ring, id.UserID, id.UserKey, groupID); err != nil {
			respondWithError(w, http.StatusForbidden, "not a member of the group")
			return
		}

		if err := s.Memberships.DeleteMembership(userID, groupID); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		s.Audit.Record(audit.LevelConfiguration, id.UserID, "",
			"User "+userID+" was removed from group "+groupID, false)
		w.WriteHeader(http.StatusNoContent)
	}
}
