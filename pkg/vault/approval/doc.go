// Package approval implements the restricted-access request workflow.
//
// Items flagged ra_enabled cannot be read through normal resolution by a
// user without access; they must raise a request that a quorum of peers
// approves. Each eligible voter holds a three-valued decision (approver,
// blocker, not selected). A request transitions PENDING -> GRANTED when the
// approver count reaches the item's threshold, or PENDING -> DENIED when the
// blocker count reaches the veto threshold, whichever comes first. Terminal
// states are frozen; late votes are recorded but never change the outcome.
//
// A grant opens a time-boxed, single-use access window, represented as an
// RS256-signed token the requester redeems exactly once before expiry.
package approval
