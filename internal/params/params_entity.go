package params

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// YearParameters is the immutable statutory parameter set for one
// company and calendar year. The bulk run loads it once and threads it
// through every calculation; nothing in this core mutates it.
type YearParameters struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_params_company_year,unique"`
	Year      int       `gorm:"not null;index:idx_params_company_year,unique"`

	// Contribution base clamp window
	ContributionBaseFloor   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	ContributionBaseCeiling decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	// Social-insurance style rates, stored as fractions (0.14 = 14%)
	EmployeeContributionRate decimal.Decimal `gorm:"type:numeric(8,6);not null"`
	EmployerContributionRate decimal.Decimal `gorm:"type:numeric(8,6);not null"`
	UnemploymentEmployeeRate decimal.Decimal `gorm:"type:numeric(8,6);not null"`
	UnemploymentEmployerRate decimal.Decimal `gorm:"type:numeric(8,6);not null"`
	AccidentInsuranceRate    decimal.Decimal `gorm:"type:numeric(8,6);not null"`
	StampTaxRate             decimal.Decimal `gorm:"type:numeric(8,6);not null"`

	Brackets []TaxBracket `gorm:"foreignKey:ParametersID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (YearParameters) TableName() string {
	return "year_parameters"
}

// TaxBracket is one slice of the progressive income-tax table. A nil
// UpperBound marks the unbounded terminal bracket.
type TaxBracket struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ParametersID uuid.UUID        `gorm:"type:uuid;not null;index"`
	LowerBound   decimal.Decimal  `gorm:"type:numeric(18,2);not null"`
	UpperBound   *decimal.Decimal `gorm:"type:numeric(18,2)"`
	Rate         decimal.Decimal  `gorm:"type:numeric(8,6);not null"`
	Position     int              `gorm:"not null"`
}

func (TaxBracket) TableName() string {
	return "tax_brackets"
}

// Unbounded reports whether this bracket consumes all remaining base.
func (b TaxBracket) Unbounded() bool {
	return b.UpperBound == nil
}
