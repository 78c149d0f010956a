package model

// User represents a row of the `users` table. PasswordHash is never
// serialized; every response built from a User leaves it out.
//
// Fields:
//  ID           – primary key identifier, assigned by the store.
//  Username     – unique login name.
//  Email        – unique email address.
//  PasswordHash – bcrypt hash of the password.
//  RoleID       – role tier of the user (1 basic, 2 elevated, 3 admin).
//  CreatedAt    – creation timestamp, "YYYY-MM-DD HH:MM:SS" UTC.
//  UpdatedAt    – refreshed on every update.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	RoleID       int64  `json:"role_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Claims returns the token payload issued for u at login. The password
// hash is not part of it.
func (u User) Claims() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role_id":    u.RoleID,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

// Role represents a row in the `roles` table. Users point at roles by
// RoleID without a foreign key.
type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
