package models

// User is the identity asserted at login. It is not authenticated
// cryptographically; the backend (or the offline fallback) simply echoes it.
type User struct {
	UserID              string `json:"user_id"`
	DisplayName         string `json:"display_name"`
	StudentID           string `json:"student_id,omitempty"`
	NeedsAccessibleSpot bool   `json:"needs_accessible_spot"`
}

// AdminAccount is an operator credential row for the admin console.
type AdminAccount struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
