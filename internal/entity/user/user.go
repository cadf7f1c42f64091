package user

import "github.com/google/uuid"

// Record is a stored account. The password is kept only as a digest.
type Record struct {
	ID           uuid.UUID
	Login        string
	PasswordHash string
}

// Identity is the authenticated principal. It is a plain value: the
// transport layer decides how to encode it into a session credential.
type Identity struct {
	UserID uuid.UUID
	Login  string
}
