package store

import (
	"time"

	"github.com/kestrelsec/passvault/pkg/model"
)

// VoteResult is the state of a request after a vote has been applied.
type VoteResult struct {
	Request   model.RARequest
	Approvers int
	Blockers  int

	// Transitioned is true when this vote moved the request out of PENDING.
	Transitioned bool
}

// ApprovalsStore abstracts restricted-access request storage.
//
// ApplyVote runs read-vote-recount-transition as one serialized unit per
// request (transaction plus row lock), so two concurrent voters can never
// both observe a sub-quorum count.
type ApprovalsStore interface {
	// CreateRequest inserts the request and seeds one NOT_SELECTED decision
	// row per eligible voter, in a single transaction.
	CreateRequest(req *model.RARequest, voters []string) error

	// FetchRequest retrieves a request by id. Returns ErrNotFound if absent.
	FetchRequest(requestID string) (*model.RARequest, error)

	// ListDecisions returns all decision rows for a request.
	ListDecisions(requestID string) ([]model.RAApproval, error)

	// ApplyVote records a voter's decision and recomputes the outcome.
	// Votes from users without a seat return ErrNotEligible. Votes on a
	// terminal request are recorded but never change the state.
	ApplyVote(requestID, voterID, decision string) (*VoteResult, error)

	// SetExpiry stamps the access window expiry on a granted request.
	SetExpiry(requestID string, expiresAt time.Time) error

	// Consume marks a granted request as redeemed. A second redemption
	// returns ErrRequestConsumed; a redemption past the window returns
	// ErrRequestExpired.
	Consume(requestID string, now time.Time) error

	// EligibleVoters returns the actors holding the approver role on an
	// item.
	EligibleVoters(itemID string) ([]string, error)
}
