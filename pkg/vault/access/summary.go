package access

import (
	"sort"

	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/vault/store"
)

// Summaries produces the per-group capability matrix for an item: every
// group in the system gets one row, whether or not it has access. This is an
// administrative view, O(number of groups) per item, off the hot access-check
// path.
//
// Output is sorted by (group name, group id) and deduplicated by group id so
// display order is stable regardless of query order.
func (r *Resolver) Summaries(itemID string) ([]store.AccessSummary, error) {
	groups, err := r.groups.ListGroups()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	summaries := make([]store.AccessSummary, 0, len(groups))

	for _, group := range groups {
		if seen[group.GroupID] {
			continue
		}
		seen[group.GroupID] = true

		canRead, canModify, err := r.access.GetAccessFlags(itemID, group.GroupID)
		if err != nil {
			return nil, err
		}

		roles, err := r.access.GetRoles(itemID, group.GroupID)
		if err != nil {
			return nil, err
		}

		summary := store.AccessSummary{
			GroupID:   group.GroupID,
			GroupName: group.GroupName,
			CanRead:   canRead,
			CanModify: canModify,
		}
		for _, role := range roles {
			switch role {
			case model.ApproverRole:
				summary.CanApproveRARequest = true
			case model.HistoryViewerRole:
				summary.CanViewHistory = true
			}
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Less(summaries[j])
	})
	return summaries, nil
}
