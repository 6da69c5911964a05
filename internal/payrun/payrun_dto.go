package payrun

import "github.com/shopspring/decimal"

// RunPayrollRequest triggers one bulk run.
type RunPayrollRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required"`

	// Optional narrowing of the employee set.
	DepartmentID *string  `json:"department_id,omitempty"`
	EmployeeIDs  []string `json:"employee_ids,omitempty"`

	// Policy flags.
	RequireApprovedAttendance bool `json:"require_approved_attendance"`
	CreateAccruals            bool `json:"create_accruals"`
	AutoSync                  bool `json:"auto_sync"`

	// Per-employee adjustments keyed by employee id. Amounts are passed
	// through to the calculator unmodified.
	Adjustments map[string]AdjustmentInput `json:"adjustments,omitempty"`
}

type AdjustmentInput struct {
	Bonus           decimal.Decimal `json:"bonus"`
	CashAllowance   decimal.Decimal `json:"cash_allowance"`
	InKindAllowance decimal.Decimal `json:"in_kind_allowance"`
	Advances        decimal.Decimal `json:"advances"`
	Garnishments    decimal.Decimal `json:"garnishments"`
}

type FailedEmployee struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Reason     string `json:"reason"`
}

// RunPayrollResponse summarizes one bulk run. Success is true when at
// least one employee calculated, even if others failed.
type RunPayrollResponse struct {
	RunID           *string          `json:"run_id,omitempty"`
	Success         bool             `json:"success"`
	Status          string           `json:"status,omitempty"`
	Year            int              `json:"year"`
	Month           int              `json:"month"`
	ProcessedCount  int              `json:"processed_count"`
	SucceededCount  int              `json:"succeeded_count"`
	FailedCount     int              `json:"failed_count"`
	FailedEmployees []FailedEmployee `json:"failed_employees,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}

type RunSummaryResponse struct {
	ID             string `json:"id"`
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Status         string `json:"status"`
	ProcessedCount int    `json:"processed_count"`
	SucceededCount int    `json:"succeeded_count"`
	FailedCount    int    `json:"failed_count"`
	CreatedAt      string `json:"created_at"`
}

type RunDetailResponse struct {
	RunSummaryResponse
	PeriodStart     string           `json:"period_start"`
	PeriodEnd       string           `json:"period_end"`
	FailedEmployees []FailedEmployee `json:"failed_employees,omitempty"`
}

type RunItemResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`

	BaseSalary      decimal.Decimal `json:"base_salary"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Bonus           decimal.Decimal `json:"bonus"`
	CashAllowance   decimal.Decimal `json:"cash_allowance"`
	InKindAllowance decimal.Decimal `json:"in_kind_allowance"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`

	ContributionBase     decimal.Decimal `json:"contribution_base"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployeeUnemployment decimal.Decimal `json:"employee_unemployment"`

	IncomeTaxBase decimal.Decimal `json:"income_tax_base"`
	IncomeTax     decimal.Decimal `json:"income_tax"`
	StampTax      decimal.Decimal `json:"stamp_tax"`

	Advances     decimal.Decimal `json:"advances"`
	Garnishments decimal.Decimal `json:"garnishments"`

	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`

	EmployerContribution decimal.Decimal `json:"employer_contribution"`
	EmployerUnemployment decimal.Decimal `json:"employer_unemployment"`
	AccidentInsurance    decimal.Decimal `json:"accident_insurance"`
	TotalEmployerCost    decimal.Decimal `json:"total_employer_cost"`

	Warnings []string `json:"warnings,omitempty"`
}
