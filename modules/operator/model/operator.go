package model

import "time"

// Operator represents a platform operator account: a staff member who can
// trigger batch cycles and pull reward reports from the operator console.
// Operators are distinct from the ledger's recommendation recipients (see
// ledger/model.User) -- an operator never receives recommendations.
type Operator struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOperator creates a new operator account.
func NewOperator(email, name, passwordHash string) *Operator {
	now := time.Now().UTC()
	return &Operator{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// OperatorDTO is the operator representation returned over HTTP.
type OperatorDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDTO converts an Operator to its DTO.
func (o *Operator) ToDTO() *OperatorDTO {
	return &OperatorDTO{
		ID:        o.ID,
		Email:     o.Email,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
	}
}
