package enums

// SessionState is the lifecycle state of a request session.
type SessionState string

const (
	SessionStateUnresolved    SessionState = "unresolved"
	SessionStateAnonymous     SessionState = "anonymous"
	SessionStateAuthenticated SessionState = "authenticated"
)

func (s SessionState) String() string {
	return string(s)
}
