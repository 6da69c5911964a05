package payrun

import (
	"go-payrun/internal/attendance"
	"go-payrun/internal/params"
	payrunerrors "go-payrun/internal/payrun/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Statutory policy defaults. Overridable per run through CalcPolicy.
const (
	DefaultMonthlyNormHours = 180
	DefaultDailyHours       = 8
	DefaultWorkingDays      = 30
)

// CalcPolicy carries the configurable constants of the calculation.
type CalcPolicy struct {
	MonthlyNormHours   decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	DefaultWorkingDays int
	DailyHours         int
}

func DefaultCalcPolicy() CalcPolicy {
	return CalcPolicy{
		MonthlyNormHours:   decimal.NewFromInt(DefaultMonthlyNormHours),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
		DefaultWorkingDays: DefaultWorkingDays,
		DailyHours:         DefaultDailyHours,
	}
}

// Adjustments are caller-supplied per-employee amounts, assumed already
// validated upstream and passed through unmodified.
type Adjustments struct {
	Bonus           decimal.Decimal
	CashAllowance   decimal.Decimal
	InKindAllowance decimal.Decimal
	Advances        decimal.Decimal
	Garnishments    decimal.Decimal
}

type CalcInput struct {
	EmployeeID  uuid.UUID
	BaseSalary  decimal.Decimal
	Attendance  []attendance.AttendanceDay
	Params      params.YearParameters
	Adjustments Adjustments
	Policy      CalcPolicy
}

// CalcResult is the full gross-to-net breakdown for one employee and
// period. Immutable once produced.
type CalcResult struct {
	// Earnings
	BaseSalary      decimal.Decimal
	OvertimePay     decimal.Decimal
	Bonus           decimal.Decimal
	CashAllowance   decimal.Decimal
	InKindAllowance decimal.Decimal
	GrossSalary     decimal.Decimal

	// Contribution figures
	ContributionBase     decimal.Decimal
	EmployeeContribution decimal.Decimal
	EmployeeUnemployment decimal.Decimal

	// Tax figures
	IncomeTaxBase decimal.Decimal
	IncomeTax     decimal.Decimal
	StampTax      decimal.Decimal

	// Other deductions
	Advances     decimal.Decimal
	Garnishments decimal.Decimal

	// Derived totals
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	// Employer side
	EmployerContribution decimal.Decimal
	EmployerUnemployment decimal.Decimal
	AccidentInsurance    decimal.Decimal
	TotalEmployerCost    decimal.Decimal

	Warnings []string
}

const (
	warnClampedToFloor   = "contribution base raised to the statutory floor"
	warnClampedToCeiling = "contribution base capped at the statutory ceiling"
	warnNegativeTaxBase  = "income tax base is negative, deductions exceed gross"
	warnNegativeNet      = "net salary is negative"
)

// Calculate turns salary, attendance and year parameters into a payslip
// breakdown. Pure function: no I/O, no shared state, same inputs always
// yield the same output. The step order is fixed because each statutory
// base depends on the prior deductions.
//
// Rounding follows payslip convention: overtime and every contribution
// line round to 2 decimals independently; the progressive income tax
// rounds once, after the full bracket walk.
func Calculate(in CalcInput) (CalcResult, error) {
	if !in.BaseSalary.IsPositive() {
		return CalcResult{}, payrunerrors.ErrNonPositiveSalary
	}

	res := CalcResult{
		BaseSalary:      in.BaseSalary,
		Bonus:           in.Adjustments.Bonus,
		CashAllowance:   in.Adjustments.CashAllowance,
		InKindAllowance: in.Adjustments.InKindAllowance,
		Advances:        in.Adjustments.Advances,
		Garnishments:    in.Adjustments.Garnishments,
	}

	// 1. Overtime pay.
	overtimeMinutes := 0
	for _, day := range in.Attendance {
		overtimeMinutes += day.OvertimeMinutes
	}
	// The hourly rate is itself a payslip line, so it is rounded to two
	// decimals before the overtime multiplication.
	hourlyRate := in.BaseSalary.Div(in.Policy.MonthlyNormHours).Round(2)
	overtimeHours := decimal.NewFromInt(int64(overtimeMinutes)).Div(decimal.NewFromInt(60))
	res.OvertimePay = overtimeHours.Mul(hourlyRate).Round(2).
		Mul(in.Policy.OvertimeMultiplier).Round(2)

	// 2. Gross salary.
	res.GrossSalary = res.BaseSalary.
		Add(res.OvertimePay).
		Add(res.Bonus).
		Add(res.CashAllowance).
		Add(res.InKindAllowance)

	// 3. Contribution base clamping.
	res.ContributionBase = res.GrossSalary
	if res.ContributionBase.LessThan(in.Params.ContributionBaseFloor) {
		res.ContributionBase = in.Params.ContributionBaseFloor
		res.Warnings = append(res.Warnings, warnClampedToFloor)
	} else if res.ContributionBase.GreaterThan(in.Params.ContributionBaseCeiling) {
		res.ContributionBase = in.Params.ContributionBaseCeiling
		res.Warnings = append(res.Warnings, warnClampedToCeiling)
	}

	// 4. Employee-side contributions, each its own payslip line.
	res.EmployeeContribution = res.ContributionBase.Mul(in.Params.EmployeeContributionRate).Round(2)
	res.EmployeeUnemployment = res.ContributionBase.Mul(in.Params.UnemploymentEmployeeRate).Round(2)

	// 5. Income tax base: raw gross minus the two employee shares, not
	// the clamped contribution base.
	res.IncomeTaxBase = res.GrossSalary.
		Sub(res.EmployeeContribution).
		Sub(res.EmployeeUnemployment)

	// 6. Progressive income tax.
	res.IncomeTax = progressiveTax(res.IncomeTaxBase, in.Params.Brackets)

	// 7. Stamp tax.
	res.StampTax = res.GrossSalary.Mul(in.Params.StampTaxRate).Round(2)

	// 8-9. Other deductions and the total.
	res.TotalDeductions = res.EmployeeContribution.
		Add(res.EmployeeUnemployment).
		Add(res.IncomeTax).
		Add(res.StampTax).
		Add(res.Advances).
		Add(res.Garnishments)

	// 10. Net salary.
	res.NetSalary = res.GrossSalary.Sub(res.TotalDeductions).Round(2)

	// 11. Employer-side cost, computed off the clamped base.
	res.EmployerContribution = res.ContributionBase.Mul(in.Params.EmployerContributionRate).Round(2)
	res.EmployerUnemployment = res.ContributionBase.Mul(in.Params.UnemploymentEmployerRate).Round(2)
	res.AccidentInsurance = res.ContributionBase.Mul(in.Params.AccidentInsuranceRate).Round(2)
	res.TotalEmployerCost = res.GrossSalary.
		Add(res.EmployerContribution).
		Add(res.EmployerUnemployment).
		Add(res.AccidentInsurance)

	// 12. Data-integrity warnings, never hard failures.
	if res.IncomeTaxBase.IsNegative() {
		res.Warnings = append(res.Warnings, warnNegativeTaxBase)
	}
	if res.NetSalary.IsNegative() {
		res.Warnings = append(res.Warnings, warnNegativeNet)
	}

	return res, nil
}

// progressiveTax walks the ordered bracket table, consuming the base
// slice by slice at each marginal rate. The unbounded terminal bracket
// takes whatever remains. Rounded once at the end of the walk.
func progressiveTax(base decimal.Decimal, brackets []params.TaxBracket) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}

	remaining := base
	total := decimal.Zero

	for _, b := range brackets {
		if !remaining.IsPositive() {
			break
		}

		slice := remaining
		if !b.Unbounded() {
			width := b.UpperBound.Sub(b.LowerBound)
			if width.LessThan(slice) {
				slice = width
			}
		}

		total = total.Add(slice.Mul(b.Rate))
		remaining = remaining.Sub(slice)
	}

	return total.Round(2)
}
