package store

// AccessSummary is the per-group capability row shown on administration
// screens. It is derived, never persisted.
type AccessSummary struct {
	GroupID             string `json:"group_id"`
	GroupName           string `json:"group_name"`
	CanRead             bool   `json:"can_read"`
	CanModify           bool   `json:"can_modify"`
	CanApproveRARequest bool   `json:"can_approve_ra_request"`
	CanViewHistory      bool   `json:"can_view_history"`
}

// Less orders summaries for stable display: by group name, then group id as
// the tie-break.
func (s AccessSummary) Less(other AccessSummary) bool {
	if s.GroupName != other.GroupName {
		return s.GroupName < other.GroupName
	}
	return s.GroupID < other.GroupID
}
