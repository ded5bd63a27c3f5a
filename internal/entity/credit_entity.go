package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransactionType string

const (
	CreditTransactionUsage CreditTransactionType = "usage"
	CreditTransactionGrant CreditTransactionType = "grant"
)

// CreditTransaction is one entry in the assist usage ledger. Usage entries
// carry a negative Amount, grants a positive one.
type CreditTransaction struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	TransactionType CreditTransactionType
	Amount          int
	Operation       *string
	RelatedId       *uuid.UUID
	Notes           *string
	CreatedAt       time.Time
}
