package model

import "time"

// Decision flags stored in ra_approvals.decision.
const (
	RAApprovalApprover    = "A"
	RAApprovalBlocker     = "B"
	RAApprovalNotSelected = "N"
)

// Request states stored in ra_requests.state.
const (
	RequestPending = "P"
	RequestGranted = "G"
	RequestDenied  = "D"
)

// RARequest is a restricted-access request: one user asking for a time-boxed
// window onto one item. It is short-lived; a consumed or expired request
// cannot be reused.
type RARequest struct {
	RequestID   string     `gorm:"column:request_id;primaryKey"`
	ItemID      string     `gorm:"column:item_id;not null"`
	RequesterID string     `gorm:"column:requester_id;not null"`
	State       string     `gorm:"column:state;type:char(1);not null"`
	Reason      string     `gorm:"column:reason"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	ConsumedAt  *time.Time `gorm:"column:consumed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (RARequest) TableName() string {
	return "ra_requests"
}

// RAApproval records one eligible voter's decision on a request. Decision is
// exactly one of "A" (approver), "B" (blocker), "N" (not selected).
type RAApproval struct {
	RequestID  string `gorm:"column:request_id;primaryKey"`
	ApproverID string `gorm:"column:approver_id;primaryKey"`
	Decision   string `gorm:"column:decision;type:char(1);not null"`
}

func (RAApproval) TableName() string {
	return "ra_approvals"
}
