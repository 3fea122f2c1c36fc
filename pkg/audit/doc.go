// Package audit provides the tamperproof event trail for the vault.
//
// Events are written in RFC5424 syslog format to a writer (stdout by
// default) and, when AUDIT_DATABASE_URL is set, persisted to the event_log
// table. The sink is fire-and-forget: a persistence failure is surfaced as a
// warning and never blocks the access decision that produced the event.
//
// # Usage
//
//	sink := audit.NewSink(auditStore, logger)
//	sink.Record(audit.LevelObjectManipulation, userID, itemID,
//	    "The password was viewed by the user", item.AuditEmailOnly())
package audit
