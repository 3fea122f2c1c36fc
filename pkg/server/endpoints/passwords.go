package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/identity"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/server"
	"github.com/kestrelsec/passvault/pkg/vault/access"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// RegisterPasswordsEndpoints registers the item endpoints
func RegisterPasswordsEndpoints(s *server.Server) {
	router := s.Router.PathPrefix("/passwords").Subrouter()
	router.Use(s.Identify.Middleware)

	router.HandleFunc("", handleCreatePassword(s)).Methods("POST")
	router.HandleFunc("/{id}", handleGetPassword(s)).Methods("GET")
	router.HandleFunc("/{id}", handleUpdatePassword(s)).Methods("PUT")
	router.HandleFunc("/{id}/summary", handleAccessSummary(s)).Methods("GET")
}

type passwordResponse struct {
	PasswordID string `json:"password_id"`
	Location   string `json:"location"`
	Plaintext  string `json:"plaintext"`
	GroupID    string `json:"group_id"`
	CanModify  bool   `json:"can_modify"`
}

// handleGetPassword serves the view-password flow: fetch, resolve, audit,
// respond. Denials are audited; views of personal items are not.
func handleGetPassword(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		itemID := mux.Vars(r)["id"]

		item, err := s.Passwords.FetchPassword(itemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "no such password")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !item.IsEnabled() {
			respondWithError(w, http.StatusNotFound, "no such password")
			return
		}

		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil {
			if errors.Is(err, access.ErrNoAccess) {
				s.Audit.Emit(audit.AccessEvent{UserID: id.UserID, ItemID: itemID})
				respondWithError(w, http.StatusForbidden, "access denied")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		plaintext, err := s.Resolver.DecryptPayload(acc, item)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		if !item.IsPersonal() && item.Audited != model.AuditedNone {
			s.Audit.Record(audit.LevelObjectManipulation, id.UserID, itemID,
				"The password was viewed by the user", item.AuditEmailOnly())
		}

		respondWithJSON(w, http.StatusOK, passwordResponse{
			PasswordID: item.PasswordID,
			Location:   item.Location,
			Plaintext:  string(plaintext),
			GroupID:    acc.GroupID,
			CanModify:  acc.CanModify(),
		})
	}
}

type updatePasswordRequest struct {
	Plaintext string `json:"plaintext"`
}

func handleUpdatePassword(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		itemID := mux.Vars(r)["id"]

		var body updatePasswordRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}

		item, err := s.Passwords.FetchPassword(itemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "no such password")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		acc, err := s.Resolver.Resolve(id.Ring, id.UserID, id.UserKey, itemID, false)
		if err != nil {
			respondWithError(w, http.StatusForbidden, "access denied")
			return
		}

		sealed, err := s.Resolver.EncryptPayload(acc, item, []byte(body.Plaintext))
		if err != nil {
			if errors.Is(err, access.ErrNoModify) {
				respondWithError(w, http.StatusForbidden, "modify capability not granted")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := s.Passwords.UpdatePayload(itemID, sealed, time.Now().UnixMilli()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if !item.IsPersonal() && item.Audited != model.AuditedNone {
			s.Audit.Record(audit.LevelObjectManipulation, id.UserID, itemID,
				"The password was updated by the user", item.AuditEmailOnly())
		}

		respondWithJSON(w, http.StatusOK, map[string]string{"password_id": itemID})
	}
}

type createPasswordRequest struct {
	PasswordID  string `json:"password_id"`
	Location    string `json:"location"`
	Plaintext   string `json:"plaintext"`
	GroupID     string `json:"group_id"`
	PType       int    `json:"ptype"`
	Audited     string `json:"audited"`
	RAEnabled   string `json:"ra_enabled"`
	RAApprovers int    `json:"ra_approvers"`
	RABlockers  int    `json:"ra_blockers"`
}

// handleCreatePassword mints the item key pairs, seals the payload and grants
// full access to the owning group and the administrative group.
func handleCreatePassword(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		var body createPasswordRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.PasswordID == "" || body.GroupID == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "password_id and group_id are required")
			return
		}
		// A restricted item with no approver quorum would grant on any vote.
		if body.RAEnabled == model.FlagTrue && body.RAApprovers < 1 {
			respondWithError(w, http.StatusUnprocessableEntity, "ra_approvers must be at least 1 on a restricted item")
			return
		}
		if body.RAApprovers < 0 || body.RABlockers < 0 {
			respondWithError(w, http.StatusUnprocessableEntity, "approval thresholds must not be negative")
			return
		}

		group, err := s.Groups.FetchGroup(body.GroupID)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "no such group")
			return
		}
		// Creating through a group requires being in it.
		if _, err := s.Resolver.GroupKey(id.Ring, id.UserID, id.UserKey, group.GroupID); err != nil {
			respondWithError(w, http.StatusForbidden, "not a member of the owning group")
			return
		}

		readKey, err := keycrypt.GenerateKey()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		modifyKey, err := keycrypt.GenerateKey()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		sealed, err := keycrypt.Wrap([]byte(body.Plaintext), readKey.Public())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		audited := body.Audited
		if audited == "" {
			audited = model.AuditedFull
		}
		historyStored := model.FlagFalse
		if s.Config.HistoryDefaultEnabled {
			historyStored = model.FlagTrue
		}

		item := &model.Password{
			PasswordID:    body.PasswordID,
			Location:      body.Location,
			Enabled:       model.FlagTrue,
			PType:         body.PType,
			Audited:       audited,
			HistoryStored: historyStored,
			RAEnabled:     body.RAEnabled,
			RAApprovers:   body.RAApprovers,
			RABlockers:    body.RABlockers,
			LastChanged:   time.Now().UnixMilli(),
			Data:          sealed,
			ReadKey:       readKey.Public().Serialize(),
			ModifyKey:     modifyKey.Public().Serialize(),
		}
		if err := s.Passwords.CreatePassword(item); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		owner := &access.Access{ReadKey: readKey, ModifyKey: modifyKey}
		if _, err := s.Resolver.Grant(owner, group, item.PasswordID, true, true, true); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// The administrative group always holds a full grant, so break-glass
		// and bulk revocation have a stable anchor.
		if admin, err := s.Groups.FetchGroup(model.AdminGroupID); err == nil {
			if _, err := s.Resolver.Grant(owner, admin, item.PasswordID, true, true, true); err != nil &&
				!errors.Is(err, store.ErrConflict) {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}

		s.Audit.Record(audit.LevelObjectManipulation, id.UserID, item.PasswordID,
			"The password was created", item.AuditEmailOnly())

		respondWithJSON(w, http.StatusCreated, map[string]string{"password_id": item.PasswordID})
	}
}

func handleAccessSummary(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID := mux.Vars(r)["id"]

		if _, err := s.Passwords.FetchPassword(itemID); err != nil {
			respondWithError(w, http.StatusNotFound, "no such password")
			return
		}

		summaries, err := s.Resolver.Summaries(itemID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		limit := s.Config.APIListLimitMax
		if limit > 0 && len(summaries) > limit {
			summaries = summaries[:limit]
		}

		respondWithJSON(w, http.StatusOK, summaries)
	}
}
