package accrual

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusAccrued = "ACCRUED"
	StatusPaid    = "PAID"
)

// AccrualRecord is the recognized obligation to pay one employee's net
// salary out of one run. The (run_id, employee_id) unique index makes
// regeneration idempotent: a second pass finds or conflicts, never
// duplicates. Status only ever moves ACCRUED -> PAID; reversal is a
// compensating record, not a mutation of history.
type AccrualRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index:idx_accrual_run_employee,unique"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_accrual_run_employee,unique"`

	Status string `gorm:"type:varchar(20);not null;default:'ACCRUED';index"`

	// Last calendar day of the run's period, fixed at generation time so
	// a late re-run never shifts the accounting date.
	AccrualDate time.Time       `gorm:"type:date;not null"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	PaidAt    *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AccrualRecord) TableName() string {
	return "accrual_records"
}

type PaymentTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccrualID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountRef  string          `gorm:"type:varchar(64);not null"`
	PaymentDate time.Time       `gorm:"type:date;not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt   time.Time
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
