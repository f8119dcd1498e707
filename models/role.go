package models

// UserRole distinguishes who may see the truth channel. Tokens are issued
// by the campaign manager's auth service; this engine only verifies them.
type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleDM     UserRole = "dm"
)
