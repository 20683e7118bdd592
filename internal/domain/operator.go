package domain

import "time"

// OperatorRole enumerates console roles.
type OperatorRole string

const (
	OperatorRoleOperator   OperatorRole = "OPERATOR"
	OperatorRoleSupervisor OperatorRole = "SUPERVISOR"
	OperatorRoleAdmin      OperatorRole = "ADMIN"
)

// Operator models a support agent. MaxChats bounds concurrent IN_PROGRESS
// assignments; current load is recomputed per query, not cached.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OperatorRole
	IsActive     bool
	MaxChats     int
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OperatorLoad pairs an operator with their live chat count.
type OperatorLoad struct {
	Operator  Operator
	ChatCount int
}
