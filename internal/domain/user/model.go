package user

import "time"

// User is one staff account as stored in the users file. Password holds
// the bcrypt hash, never the plain text.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FullName  string `json:"fullName"`
	CreatedAt string `json:"createdAt"`
}

// Public is the password-free view returned to clients.
type Public struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
}

// Public strips the password hash.
func (u *User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, Role: u.Role, FullName: u.FullName}
}

// Timestamp renders creation times the way the users file stores them.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
