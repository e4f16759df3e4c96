package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public strips everything a client must not see.
func (u User) Public() AuthUser {
	return AuthUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// AuthClaims is the identity attached to a request once its session token
// has been verified.
type AuthClaims struct {
	UserID   int64  `json:"sub"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type AuthUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

type LoginResult struct {
	Message     string   `json:"message"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	Role        Role     `json:"role"`
	User        AuthUser `json:"user"`
}
