package payrun

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusDraft      = "DRAFT"
	StatusCalculated = "CALCULATED"
	StatusAccrued    = "ACCRUED"
	StatusSynced     = "SYNCED"
)

// PayrollRun is one execution of the payroll pipeline for a company and
// period. The (company_id, year, month) unique index is the
// authoritative guard against duplicate runs; the in-memory existence
// check is only a fast path.
type PayrollRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_run_period,unique"`
	Year      int       `gorm:"not null;index:idx_run_period,unique"`
	Month     int       `gorm:"not null;index:idx_run_period,unique"`

	PeriodStart time.Time `gorm:"type:date;not null"`
	PeriodEnd   time.Time `gorm:"type:date;not null"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	ProcessedCount int `gorm:"not null;default:0"`
	SucceededCount int `gorm:"not null;default:0"`
	FailedCount    int `gorm:"not null;default:0"`

	TriggeredBy uuid.UUID `gorm:"type:uuid;not null"`

	Items    []PayrollRunItem `gorm:"foreignKey:RunID"`
	Failures []RunFailure     `gorm:"foreignKey:RunID"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// PayrollRunItem is the persisted calculation result for one employee
// within a run. Field groups mirror the payslip: earnings,
// contributions, taxes, deductions, totals.
type PayrollRunItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index:idx_item_run_employee,unique"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_item_run_employee,unique"`

	BaseSalary      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	OvertimePay     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Bonus           decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CashAllowance   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	InKindAllowance decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	GrossSalary     decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	ContributionBase     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	EmployeeContribution decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	EmployeeUnemployment decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	IncomeTaxBase decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	IncomeTax     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	StampTax      decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	Advances     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Garnishments decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	TotalDeductions decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	NetSalary       decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	EmployerContribution decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	EmployerUnemployment decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	AccidentInsurance    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TotalEmployerCost    decimal.Decimal `gorm:"type:numeric(18,2);not null"`

	// Human-readable warnings, newline-joined.
	Warnings string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PayrollRunItem) TableName() string {
	return "payroll_run_items"
}

// WarningList splits the stored warnings back into a slice.
func (i PayrollRunItem) WarningList() []string {
	if i.Warnings == "" {
		return nil
	}
	return strings.Split(i.Warnings, "\n")
}

// RunFailure records one employee the run could not calculate. Failures
// never abort the batch; they are persisted for manual follow-up.
type RunFailure struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RunID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null"`
	FullName   string    `gorm:"not null"`
	Reason     string    `gorm:"type:text;not null"`
	CreatedAt  time.Time
}

func (RunFailure) TableName() string {
	return "payroll_run_failures"
}

// newItemFromResult copies a calculation result into its persisted form.
func newItemFromResult(runID, companyID, employeeID uuid.UUID, res CalcResult) PayrollRunItem {
	return PayrollRunItem{
		ID:                   uuid.New(),
		RunID:                runID,
		CompanyID:            companyID,
		EmployeeID:           employeeID,
		BaseSalary:           res.BaseSalary,
		OvertimePay:          res.OvertimePay,
		Bonus:                res.Bonus,
		CashAllowance:        res.CashAllowance,
		InKindAllowance:      res.InKindAllowance,
		GrossSalary:          res.GrossSalary,
		ContributionBase:     res.ContributionBase,
		EmployeeContribution: res.EmployeeContribution,
		EmployeeUnemployment: res.EmployeeUnemployment,
		IncomeTaxBase:        res.IncomeTaxBase,
		IncomeTax:            res.IncomeTax,
		StampTax:             res.StampTax,
		Advances:             res.Advances,
		Garnishments:         res.Garnishments,
		TotalDeductions:      res.TotalDeductions,
		NetSalary:            res.NetSalary,
		EmployerContribution: res.EmployerContribution,
		EmployerUnemployment: res.EmployerUnemployment,
		AccidentInsurance:    res.AccidentInsurance,
		TotalEmployerCost:    res.TotalEmployerCost,
		Warnings:             strings.Join(res.Warnings, "\n"),
	}
}

// PeriodBounds returns the first and last calendar day of a period.
func PeriodBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
