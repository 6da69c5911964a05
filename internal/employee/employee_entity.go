package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Employee struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID      `gorm:"type:uuid;index"`
	FullName     string          `gorm:"column:full_name;not null"`
	BaseSalary   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Active       bool            `gorm:"not null;default:true;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}
