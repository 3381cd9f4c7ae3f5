package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The role-specific data (donor or hospital profile)
// lives in its own table and is reached through the Principal built
// for each authenticated request.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – ADMIN, HOSPITAL or DONOR.
//  FirstName    – given name.
//  LastName     – family name.
//  City         – city of residence.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    `json:"id"`         // users.id
    Email        string    `json:"email"`      // users.email
    PasswordHash string    `json:"-"`          // users.password_hash
    Role         Role      `json:"role"`       // users.role
    FirstName    string    `json:"first_name"` // users.first_name
    LastName     string    `json:"last_name"`  // users.last_name
    City         string    `json:"city"`       // users.city
    IsActive     bool      `json:"is_active"`  // users.is_active
    CreatedAt    time.Time `json:"created_at"` // users.created_at
    UpdatedAt    time.Time `json:"updated_at"` // users.updated_at
}

// FullName joins first and last name.
func (u User) FullName() string {
    switch {
    case u.FirstName == "":
        return u.LastName
    case u.LastName == "":
        return u.FirstName
    }
    return u.FirstName + " " + u.LastName
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
