package audit

import "fmt"

// ItemEvent records an action taken on an access-controlled item.
type ItemEvent struct {
	Level     Level
	UserID    string
	ItemID    string
	Detail    string
	EmailOnly bool
}

func (e ItemEvent) MessageID() string {
	return e.Level.messageID()
}

func (e ItemEvent) Message() string {
	return fmt.Sprintf("%s: item %s: %s", e.UserID, e.ItemID, e.Detail)
}

func (e ItemEvent) Severity() Severity {
	return SeverityInfo
}

func (e ItemEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ItemEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"item": e.ItemID,
		},
	}
	if e.EmailOnly {
		sd[SDIDAction] = map[string]string{"delivery": "email-only"}
	}
	return sd
}

// AccessEvent records the outcome of an access resolution.
type AccessEvent struct {
	UserID  string
	ItemID  string
	GroupID string
	Granted bool
}

func (e AccessEvent) MessageID() string {
	return "access"
}

func (e AccessEvent) Message() string {
	if e.Granted {
		return fmt.Sprintf("%s resolved access to %s through group %s", e.UserID, e.ItemID, e.GroupID)
	}
	return fmt.Sprintf("%s was denied access to %s", e.UserID, e.ItemID)
}

func (e AccessEvent) Severity() Severity {
	if e.Granted {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e AccessEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AccessEvent) StructuredData() map[string]map[string]string {
	result := "granted"
	if !e.Granted {
		result = "denied"
	}
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"item": e.ItemID,
		},
		SDIDAction: {
			"operation": "resolve",
			"result":    result,
		},
	}
	if e.GroupID != "" {
		sd[SDIDSubject]["group"] = e.GroupID
	}
	return sd
}

// RequestEvent records restricted-access workflow activity.
type RequestEvent struct {
	RequestID string
	UserID    string
	ItemID    string
	Action    string // raised, voted, granted, denied, redeemed
}

func (e RequestEvent) MessageID() string {
	return "ra-request"
}

func (e RequestEvent) Message() string {
	return fmt.Sprintf("restricted-access request %s for item %s: %s by %s", e.RequestID, e.ItemID, e.Action, e.UserID)
}

func (e RequestEvent) Severity() Severity {
	if e.Action == "denied" {
		return SeverityNotice
	}
	return SeverityInfo
}

func (e RequestEvent) Facility() int {
	return FacilityAuthPriv
}

func (e RequestEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth: {
			"user": e.UserID,
		},
		SDIDSubject: {
			"item":    e.ItemID,
			"request": e.RequestID,
		},
		SDIDAction: {
			"operation": e.Action,
		},
	}
}
