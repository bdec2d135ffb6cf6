package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name; doubles as the owner id on
//                 cached batch documents and dashboard routes.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name, either "engineer" or "admin".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Roles accepted by the registration endpoint and enforced by the
// role middleware. Unknown values are coerced to RoleEngineer.
const (
	RoleEngineer = "engineer"
	RoleAdmin    = "admin"
)
