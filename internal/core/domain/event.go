package domain

import "time"

// AuthEventType names a credential lifecycle or access-control outcome.
type AuthEventType string

const (
	EventRegistered    AuthEventType = "registered"
	EventLoginSuccess  AuthEventType = "login_success"
	EventLoginFailure  AuthEventType = "login_failure"
	EventTokenRejected AuthEventType = "token_rejected"
	EventAccessDenied  AuthEventType = "access_denied"
	EventUserUpdated   AuthEventType = "user_updated"
	EventUserDeleted   AuthEventType = "user_deleted"
	EventUsersPurged   AuthEventType = "users_purged"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	Type      AuthEventType
	Subject   string // email or user id, whichever the caller knows
	Actor     string // user id of the authenticated caller, if any
	Reason    string // optional
	RemoteIP  string
	Timestamp time.Time
}
