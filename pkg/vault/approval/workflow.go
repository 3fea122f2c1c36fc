package approval

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

var (
	// ErrBadDecision is returned for a decision flag outside {A, B, N}.
	ErrBadDecision = errors.New("unknown decision flag")

	// ErrBadState is returned for a state flag outside {P, G, D}.
	ErrBadState = errors.New("unknown request state flag")

	// ErrNotRestricted is returned when raising a request against an item
	// that does not require approval.
	ErrNotRestricted = errors.New("item is not restricted-access")

	// ErrNoApprovers is returned when an item has no eligible voters, so a
	// request could never resolve.
	ErrNoApprovers = errors.New("item has no approvers configured")

	// ErrNoQuorum is returned when a restricted item's approver threshold
	// is not positive. Such a request would grant on any vote at all.
	ErrNoQuorum = errors.New("item has no approval quorum configured")

	// ErrNotRequester is returned when someone other than the requester
	// tries to redeem a grant.
	ErrNotRequester = errors.New("grant belongs to another user")

	// ErrNotGranted is returned when fetching a grant token for a request
	// that is not currently granted.
	ErrNotGranted = errors.New("request is not granted")
)

// Workflow runs the quorum state machine over an ApprovalsStore.
//
// Votes for the same request are serialized twice over: a per-request mutex
// in this process and a row lock in the store transaction, so the
// count-evaluate-transition sequence never acts on a racing partial view.
type Workflow struct {
	approvals  store.ApprovalsStore
	passwords  store.PasswordsStore
	signingKey *keycrypt.Key
	window     time.Duration
	log        *zap.SugaredLogger

	mu           sync.Mutex
	requestLocks map[string]*sync.Mutex
}

// NewWorkflow creates a Workflow. window is the lifetime of a granted access
// window; signingKey signs grant tokens.
func NewWorkflow(approvals store.ApprovalsStore, passwords store.PasswordsStore, signingKey *keycrypt.Key, window time.Duration, log *zap.SugaredLogger) *Workflow {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Workflow{
		approvals:    approvals,
		passwords:    passwords,
		signingKey:   signingKey,
		window:       window,
		log:          log,
		requestLocks: map[string]*sync.Mutex{},
	}
}

func (w *Workflow) requestLock(requestID string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.requestLocks[requestID]
	if !ok {
		lock = &sync.Mutex{}
		w.requestLocks[requestID] = lock
	}
	return lock
}

// releaseRequestLock drops a request's mutex once the request can no longer
// change state, so the map does not grow for the life of the process.
// Dropping an entry while held is safe: the row lock in the store still
// serializes any voter that raced the removal.
func (w *Workflow) releaseRequestLock(requestID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.requestLocks, requestID)
}

// CreateRequest raises a restricted-access request for (requester, item) and
// seats every eligible voter with a NOT_SELECTED decision.
func (w *Workflow) CreateRequest(requesterID, itemID, reason string) (*model.RARequest, error) {
	item, err := w.passwords.FetchPassword(itemID)
	if err != nil {
		return nil, err
	}
	// Disabled items read as nonexistent here, same as the view path.
	if !item.IsEnabled() {
		return nil, store.ErrNotFound
	}
	if !item.IsRestricted() {
		return nil, ErrNotRestricted
	}
	if item.RAApprovers < 1 {
		return nil, ErrNoQuorum
	}

	voters, err := w.approvals.EligibleVoters(itemID)
	if err != nil {
		return nil, err
	}
	if len(voters) == 0 {
		return nil, ErrNoApprovers
	}

	req := &model.RARequest{
		RequestID:   uuid.NewString(),
		ItemID:      itemID,
		RequesterID: requesterID,
		State:       model.RequestPending,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
	if err := w.approvals.CreateRequest(req, voters); err != nil {
		return nil, err
	}

	w.log.Infow("restricted-access request raised",
		"request_id", req.RequestID, "item_id", itemID, "requester_id", requesterID,
		"voters", len(voters))
	return req, nil
}

// Vote casts or changes a voter's decision. While the request is PENDING a
// re-vote overwrites the previous decision; once terminal, votes are still
// recorded but never alter the outcome.
//
// When this vote grants the request, the access window clock starts and the
// grant token is returned for delivery to the requester.
func (w *Workflow) Vote(requestID, voterID string, decision Decision) (*store.VoteResult, string, error) {
	if !decision.IsADecision() {
		return nil, "", ErrBadDecision
	}

	lock := w.requestLock(requestID)
	lock.Lock()
	defer lock.Unlock()

	result, err := w.approvals.ApplyVote(requestID, voterID, decision.Flag())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.releaseRequestLock(requestID)
		}
		return nil, "", err
	}

	state, err := StateFromFlag(result.Request.State)
	if err != nil {
		return nil, "", err
	}
	if state != StatePending {
		w.releaseRequestLock(requestID)
	}

	if !result.Transitioned {
		return result, "", nil
	}

	w.log.Infow("restricted-access request resolved",
		"request_id", requestID, "state", state.String(),
		"approvers", result.Approvers, "blockers", result.Blockers)

	if state != StateGranted {
		return result, "", nil
	}

	expiresAt := time.Now().Add(w.window)
	if err := w.approvals.SetExpiry(requestID, expiresAt); err != nil {
		return nil, "", err
	}

	token, err := signGrant(w.signingKey, requestID, result.Request.RequesterID, result.Request.ItemID, expiresAt)
	if err != nil {
		return nil, "", err
	}
	return result, token, nil
}

// Status returns the effective state of a request: granted-but-expired and
// granted-but-consumed read as denied.
func (w *Workflow) Status(requestID string) (RequestState, *model.RARequest, error) {
	req, err := w.approvals.FetchRequest(requestID)
	if err != nil {
		return StatePending, nil, err
	}

	state, err := EffectiveState(req, time.Now())
	if err != nil {
		return StatePending, nil, err
	}
	return state, req, nil
}

// GrantToken re-issues the grant token for a granted, still-live request.
// Only the requester may fetch it; the token carries the stored window
// expiry, so a re-issued token is never wider than the original.
func (w *Workflow) GrantToken(requestID, userID string) (string, error) {
	req, err := w.approvals.FetchRequest(requestID)
	if err != nil {
		return "", err
	}
	if req.RequesterID != userID {
		return "", ErrNotRequester
	}

	state, err := EffectiveState(req, time.Now())
	if err != nil {
		return "", err
	}
	if state != StateGranted || req.ExpiresAt == nil {
		return "", ErrNotGranted
	}

	return signGrant(w.signingKey, req.RequestID, req.RequesterID, req.ItemID, *req.ExpiresAt)
}

// Redeem consumes a granted access window. The token must verify, belong to
// the caller, and the request must be granted, unconsumed and unexpired.
// Returns the verified grant for the caller to act on exactly once.
func (w *Workflow) Redeem(tokenString, userID string) (*Grant, error) {
	grant, err := VerifyGrant(w.signingKey, tokenString)
	if err != nil {
		return nil, err
	}
	if grant.UserID != userID {
		return nil, ErrNotRequester
	}

	// Disabled items are unreachable through break-glass too; the window
	// stays unconsumed.
	item, err := w.passwords.FetchPassword(grant.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsEnabled() {
		return nil, store.ErrNotFound
	}

	lock := w.requestLock(grant.RequestID)
	lock.Lock()
	defer lock.Unlock()

	err = w.approvals.Consume(grant.RequestID, time.Now())
	w.releaseRequestLock(grant.RequestID)
	if err != nil {
		return nil, err
	}

	w.log.Infow("restricted-access window redeemed",
		"request_id", grant.RequestID, "item_id", grant.ItemID, "user_id", userID)
	return grant, nil
}
