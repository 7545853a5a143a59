package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type CallType string

const (
	CallTypeWaiter  CallType = "WAITER"
	CallTypeBill    CallType = "BILL"
	CallTypeNapkins CallType = "NAPKINS"
)

var callTypePattern = regexp.MustCompile(`^[A-Z][A-Z_]{1,29}$`)

// IsValid accepts the known call types plus any other upper-case token,
// so restaurants can add their own buttons without a schema change.
func (c CallType) IsValid() bool {
	return callTypePattern.MatchString(string(c))
}

// ServiceCall has no status. Whether it is active depends only on its age.
type ServiceCall struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Seq          int64     `db:"seq" json:"seq"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	TableID      uuid.UUID `db:"table_id" json:"table_id"`
	TableNumber  int       `db:"-" json:"table_number"`
	CallType     CallType  `db:"call_type" json:"call_type"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

func (c ServiceCall) GetCreatedAt() time.Time { return c.CreatedAt }
func (c ServiceCall) GetSeq() int64           { return c.Seq }
