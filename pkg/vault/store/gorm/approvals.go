package gorm

import (
	"time"

	"gorm.io/gorm"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Ensure ApprovalsStore implements store.ApprovalsStore
var _ store.ApprovalsStore = (*ApprovalsStore)(nil)

// ApprovalsStore implements store.ApprovalsStore using GORM
type ApprovalsStore struct {
	db *gorm.DB
}

// NewApprovalsStore creates a new ApprovalsStore
func NewApprovalsStore(db *gorm.DB) *ApprovalsStore {
	return &ApprovalsStore{db: db}
}

// CreateRequest inserts the request and one NOT_SELECTED decision row per
// eligible voter, in a single transaction.
func (s *ApprovalsStore) CreateRequest(req *model.RARequest, voters []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			INSERT INTO ra_requests (request_id, item_id, requester_id, state, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, req.RequestID, req.ItemID, req.RequesterID, req.State, req.Reason, req.CreatedAt).Error; err != nil {
			return err
		}

		for _, voter := range voters {
			if err := tx.Exec(`
				INSERT INTO ra_approvals (request_id, approver_id, decision)
				VALUES (?, ?, ?)
			`, req.RequestID, voter, model.RAApprovalNotSelected).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FetchRequest retrieves a request by id
func (s *ApprovalsStore) FetchRequest(requestID string) (*model.RARequest, error) {
	var req model.RARequest
	result := s.db.Raw(`
		SELECT request_id, item_id, requester_id, state, reason, expires_at, consumed_at, created_at
		FROM ra_requests WHERE request_id = ?
	`, requestID).Scan(&req)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, store.ErrNotFound
	}
	return &req, nil
}

// ListDecisions returns all decision rows for a request
func (s *ApprovalsStore) ListDecisions(requestID string) ([]model.RAApproval, error) {
	var rows []model.RAApproval
	result := s.db.Raw(`
		SELECT request_id, approver_id, decision
		FROM ra_approvals WHERE request_id = ? ORDER BY approver_id
	`, requestID).Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// ApplyVote records a decision and recomputes the outcome. The request row
// is locked for the duration so concurrent voters serialize; without the
// lock two sub-quorum observations could each fail to transition.
func (s *ApprovalsStore) ApplyVote(requestID, voterID, decision string) (*store.VoteResult, error) {
	var voteResult *store.VoteResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var req model.RARequest
		result := tx.Raw(`
			SELECT request_id, item_id, requester_id, state, reason, expires_at, consumed_at, created_at
			FROM ra_requests WHERE request_id = ? FOR UPDATE
		`, requestID).Scan(&req)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}

		// Only seeded voters may cast; the update hits no row otherwise.
		updated := tx.Exec(`
			UPDATE ra_approvals SET decision = ?
			WHERE request_id = ? AND approver_id = ?
		`, decision, requestID, voterID)
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected == 0 {
			return store.ErrNotEligible
		}

		approvers, blockers, err := s.countDecisions(tx, requestID)
		if err != nil {
			return err
		}

		voteResult = &store.VoteResult{
			Request:   req,
			Approvers: approvers,
			Blockers:  blockers,
		}

		// Terminal states are frozen: the vote is recorded above but the
		// outcome is never re-evaluated.
		if req.State != model.RequestPending {
			return nil
		}

		var thresholds struct {
			RAApprovers int `gorm:"column:ra_approvers"`
			RABlockers  int `gorm:"column:ra_blockers"`
		}
		result = tx.Raw(`
			SELECT ra_approvers, ra_blockers FROM passwords WHERE password_id = ?
		`, req.ItemID).Scan(&thresholds)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}

		// Zero thresholds never fire: an approver quorum of zero is a
		// malformed row, not an open door, and zero blockers disables the
		// veto.
		next := req.State
		if thresholds.RAApprovers > 0 && approvers >= thresholds.RAApprovers {
			next = model.RequestGranted
		} else if thresholds.RABlockers > 0 && blockers >= thresholds.RABlockers {
			next = model.RequestDenied
		}

		if next == req.State {
			return nil
		}

		if err := tx.Exec(`
			UPDATE ra_requests SET state = ? WHERE request_id = ?
		`, next, requestID).Error; err != nil {
			return err
		}

		voteResult.Request.State = next
		voteResult.Transitioned = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voteResult, nil
}

func (s *ApprovalsStore) countDecisions(tx *gorm.DB, requestID string) (approvers, blockers int, err error) {
	var counts struct {
		Approvers int `gorm:"column:approvers"`
		Blockers  int `gorm:"column:blockers"`
	}
	result := tx.Raw(`
		SELECT
			COUNT(*) FILTER (WHERE decision = ?) AS approvers,
			COUNT(*) FILTER (WHERE decision = ?) AS blockers
		FROM ra_approvals WHERE request_id = ?
	`, model.RAApprovalApprover, model.RAApprovalBlocker, requestID).Scan(&counts)
	if result.Error != nil {
		return 0, 0, result.Error
	}
	return counts.Approvers, counts.Blockers, nil
}

// SetExpiry stamps the access window expiry on a granted request
func (s *ApprovalsStore) SetExpiry(requestID string, expiresAt time.Time) error {
	return s.db.Exec(`
		UPDATE ra_requests SET expires_at = ? WHERE request_id = ?
	`, expiresAt, requestID).Error
}

// Consume marks a granted request as redeemed. Single use: a second
// redemption fails, as does one past the window expiry.
func (s *ApprovalsStore) Consume(requestID string, now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var req model.RARequest
		result := tx.Raw(`
			SELECT request_id, state, expires_at, consumed_at
			FROM ra_requests WHERE request_id = ? FOR UPDATE
		`, requestID).Scan(&req)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return store.ErrNotFound
		}

		if req.State != model.RequestGranted {
			return store.ErrNotFound
		}
		if req.ConsumedAt != nil {
			return store.ErrRequestConsumed
		}
		if req.ExpiresAt != nil && now.After(*req.ExpiresAt) {
			return store.ErrRequestExpired
		}

		return tx.Exec(`
			UPDATE ra_requests SET consumed_at = ? WHERE request_id = ?
		`, now, requestID).Error
	})
}

// EligibleVoters returns the actors holding the approver role on an item
func (s *ApprovalsStore) EligibleVoters(itemID string) ([]string, error) {
	type actorRow struct {
		ActorID string `gorm:"column:actor_id"`
	}
	var rows []actorRow
	result := s.db.Raw(`
		SELECT gar.actor_id FROM group_access_roles gar
		WHERE gar.item_id = ? AND gar.role = ? ORDER BY gar.actor_id
	`, itemID, model.ApproverRole).Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	voters := make([]string, 0, len(rows))
	for _, row := range rows {
		voters = append(voters, row.ActorID)
	}
	return voters, nil
}
