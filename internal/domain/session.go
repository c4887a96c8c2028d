package domain

// Session identifies an authenticated caller. Every mutating operation
// requires both a user and an organization identity.
type Session struct {
	UserID string
	OrgID  string
	Email  string
}
