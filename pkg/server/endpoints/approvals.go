package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kestrelsec/passvault/pkg/audit"
	"github.com/kestrelsec/passvault/pkg/identity"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/server"
	"github.com/kestrelsec/passvault/pkg/vault/approval"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// RegisterApprovalEndpoints registers the restricted-access workflow
// endpoints
func RegisterApprovalEndpoints(s *server.Server) {
	router := s.Router.PathPrefix("/ra").Subrouter()
	router.Use(s.Identify.Middleware)

	router.HandleFunc("/requests", handleCreateRequest(s)).Methods("POST")
	router.HandleFunc("/requests/{id}", handleRequestStatus(s)).Methods("GET")
	router.HandleFunc("/requests/{id}/votes", handleVote(s)).Methods("POST")
	router.HandleFunc("/requests/{id}/grant", handleFetchGrant(s)).Methods("GET")
	router.HandleFunc("/redeem", handleRedeem(s)).Methods("POST")
}

type createRARequest struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

func handleCreateRequest(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		var body createRARequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.ItemID == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "item_id is required")
			return
		}

		req, err := s.Workflow.CreateRequest(id.UserID, body.ItemID, body.Reason)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				respondWithError(w, http.StatusNotFound, "no such password")
			case errors.Is(err, approval.ErrNotRestricted):
				respondWithError(w, http.StatusUnprocessableEntity, "item does not require approval")
			case errors.Is(err, approval.ErrNoApprovers):
				respondWithError(w, http.StatusUnprocessableEntity, "item has no approvers configured")
			case errors.Is(err, approval.ErrNoQuorum):
				respondWithError(w, http.StatusUnprocessableEntity, "item has no approval quorum configured")
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		s.Audit.Emit(audit.RequestEvent{
			RequestID: req.RequestID, UserID: id.UserID, ItemID: body.ItemID, Action: "raised",
		})
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"request_id": req.RequestID,
			"state":      approval.StatePending.String(),
		})
	}
}

func handleRequestStatus(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := mux.Vars(r)["id"]

		state, req, err := s.Workflow.Status(requestID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "no such request")
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"request_id": req.RequestID,
			"item_id":    req.ItemID,
			"requester":  req.RequesterID,
			"state":      state.String(),
			"reason":     req.Reason,
		})
	}
}

type voteRequest struct {
	Decision string `json:"decision"`
}

func handleVote(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		requestID := mux.Vars(r)["id"]

		var body voteRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}

		decision, err := approval.DecisionString(body.Decision)
		if err != nil || decision == approval.DecisionNotSelected {
			respondWithError(w, http.StatusUnprocessableEntity, "decision must be approver or blocker")
			return
		}

		result, _, err := s.Workflow.Vote(requestID, id.UserID, decision)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				respondWithError(w, http.StatusNotFound, "no such request")
			case errors.Is(err, store.ErrNotEligible):
				respondWithError(w, http.StatusForbidden, "not an eligible voter")
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		state, err := approval.StateFromFlag(result.Request.State)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if result.Transitioned {
			action := "granted"
			if state == approval.StateDenied {
				action = "denied"
			}
			s.Audit.Emit(audit.RequestEvent{
				RequestID: requestID, UserID: id.UserID, ItemID: result.Request.ItemID, Action: action,
			})
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"request_id": requestID,
			"state":      state.String(),
			"approvers":  result.Approvers,
			"blockers":   result.Blockers,
		})
	}
}

// handleFetchGrant hands the requester their grant token once the request is
// granted and still inside the access window.
func handleFetchGrant(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())
		requestID := mux.Vars(r)["id"]

		token, err := s.Workflow.GrantToken(requestID, id.UserID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				respondWithError(w, http.StatusNotFound, "no such request")
			case errors.Is(err, approval.ErrNotRequester):
				respondWithError(w, http.StatusForbidden, "not the requester")
			case errors.Is(err, approval.ErrNotGranted):
				respondWithError(w, http.StatusConflict, "request is not granted")
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"request_id":  requestID,
			"grant_token": token,
		})
	}
}

type redeemRequest struct {
	Token string `json:"token"`
}

// handleRedeem consumes an access window and opens the item through the
// administrative group's standing grant.
func handleRedeem(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		var body redeemRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}

		grant, err := s.Workflow.Redeem(body.Token, id.UserID)
		if err != nil {
			switch {
			case errors.Is(err, approval.ErrBadGrant):
				respondWithError(w, http.StatusForbidden, "grant token rejected")
			case errors.Is(err, approval.ErrNotRequester):
				respondWithError(w, http.StatusForbidden, "not the requester")
			case errors.Is(err, store.ErrRequestConsumed):
				respondWithError(w, http.StatusConflict, "access window already used")
			case errors.Is(err, store.ErrRequestExpired):
				respondWithError(w, http.StatusConflict, "access window expired")
			case errors.Is(err, store.ErrNotFound):
				respondWithError(w, http.StatusNotFound, "no such request")
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}

		s.Audit.Emit(audit.RequestEvent{
			RequestID: grant.RequestID, UserID: id.UserID, ItemID: grant.ItemID, Action: "redeemed",
		})

		if s.AdminKey == nil {
			respondWithJSON(w, http.StatusOK, map[string]string{
				"request_id": grant.RequestID,
				"item_id":    grant.ItemID,
			})
			return
		}

		item, err := s.Passwords.FetchPassword(grant.ItemID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		id.Ring.PutGroup(model.AdminGroupID, s.AdminKey)
		acc, err := s.Resolver.GroupAccess(id.Ring, model.AdminGroupID, grant.ItemID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		plaintext, err := s.Resolver.DecryptPayload(acc, item)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if !item.IsPersonal() {
			s.Audit.Record(audit.LevelObjectManipulation, id.UserID, item.PasswordID,
				"The password was viewed through a restricted-access window", item.AuditEmailOnly())
		}

		respondWithJSON(w, http.StatusOK, passwordResponse{
			PasswordID: item.PasswordID,
			Location:   item.Location,
			Plaintext:  string(plaintext),
			GroupID:    model.AdminGroupID,
		})
	}
}
