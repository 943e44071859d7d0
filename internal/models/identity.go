package models

// Identity is the stable reference to an authenticated user. ID never
// changes; Username and DisplayName are mutable profile data and must not
// be used as storage keys.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"` // stored lowercase with "@" prefix
	DisplayName string `json:"display_name,omitempty"`
}
