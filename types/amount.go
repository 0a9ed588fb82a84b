package types

import (
	"database/sql/driver"
	"fmt"
	"math/big"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Numeric is an arbitrary precision decimal column. Postgres stores it as
// numeric; sqlite stores it as text, since numeric affinity would turn integers
// wider than int64 into lossy REALs.
type Numeric struct {
	decimal.Decimal
}

func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{Decimal: d}
}

func (Numeric) GormDataType() string {
	return "numeric"
}

func (Numeric) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() != "postgres" {
		return "text"
	}
	if field.Precision > 0 {
		return fmt.Sprintf("numeric(%d,%d)", field.Precision, field.Scale)
	}
	return "numeric"
}

// Amount stores an on-chain integer together with its decimal-scaled form.
// Both halves are written by balance.SetValueWithDecimals and nothing else.
type Amount struct {
	Exact Numeric `gorm:"column:exact;precision:78;scale:0;not null" json:"exact"`
	Value Numeric `gorm:"column:scaled;not null" json:"value"`
}

func (a Amount) IsZero() bool {
	return a.Exact.IsZero()
}

// ExactInt returns the raw integer amount.
func (a Amount) ExactInt() *big.Int {
	return a.Exact.BigInt()
}

// AddressList is a text array column holding lowercase hex addresses.
type AddressList []string

func (l AddressList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *AddressList) Scan(src any) error {
	return (*pq.StringArray)(l).Scan(src)
}

func (AddressList) GormDataType() string {
	return "text"
}

func (AddressList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (l AddressList) Contains(addr string) bool {
	for _, a := range l {
		if a == addr {
			return true
		}
	}
	return false
}

// Without returns a copy of l with addr removed.
func (l AddressList) Without(addr string) AddressList {
	out := make(AddressList, 0, len(l))
	for _, a := range l {
		if a != addr {
			out = append(out, a)
		}
	}
	return out
}
