package payrun_test

import (
	"testing"

	"go-payrun/internal/attendance"
	"go-payrun/internal/params"
	"go-payrun/internal/payrun"
	payrunerrors "go-payrun/internal/payrun/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func bracket(lower, upper, rate string, position int) params.TaxBracket {
	b := params.TaxBracket{
		LowerBound: d(lower),
		Rate:       d(rate),
		Position:   position,
	}
	if upper != "" {
		ub := d(upper)
		b.UpperBound = &ub
	}
	return b
}

// testYearParams is a three-bracket statutory table with a 5000..30000
// contribution clamp window. Chosen so the reference figures below work
// out to exact two-decimal amounts.
func testYearParams() params.YearParameters {
	return params.YearParameters{
		Year:                     2026,
		ContributionBaseFloor:    d("5000"),
		ContributionBaseCeiling:  d("30000"),
		EmployeeContributionRate: d("0.14"),
		EmployerContributionRate: d("0.205"),
		UnemploymentEmployeeRate: d("0.01"),
		UnemploymentEmployerRate: d("0.02"),
		AccidentInsuranceRate:    d("0.005"),
		StampTaxRate:             d("0.00759"),
		Brackets: []params.TaxBracket{
			bracket("0", "10000", "0.15", 1),
			bracket("10000", "25000", "0.20", 2),
			bracket("25000", "", "0.27", 3),
		},
	}
}

func approvedDay(workedMinutes, overtimeMinutes int) attendance.AttendanceDay {
	return attendance.AttendanceDay{
		WorkedMinutes:   workedMinutes,
		OvertimeMinutes: overtimeMinutes,
		Status:          attendance.StatusManagerApproved,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestCalculate_ReferenceBreakdown(t *testing.T) {
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("18000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     testYearParams(),
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "0", res.OvertimePay, "overtime pay")
	assertDecimal(t, "18000", res.GrossSalary, "gross salary")
	assertDecimal(t, "18000", res.ContributionBase, "contribution base")
	assertDecimal(t, "2520", res.EmployeeContribution, "employee contribution")
	assertDecimal(t, "180", res.EmployeeUnemployment, "employee unemployment")
	assertDecimal(t, "15300", res.IncomeTaxBase, "income tax base")
	// 10000 @ 15% + 5300 @ 20%
	assertDecimal(t, "2560", res.IncomeTax, "income tax")
	assertDecimal(t, "136.62", res.StampTax, "stamp tax")
	assertDecimal(t, "5396.62", res.TotalDeductions, "total deductions")
	assertDecimal(t, "12603.38", res.NetSalary, "net salary")
	assertDecimal(t, "3690", res.EmployerContribution, "employer contribution")
	assertDecimal(t, "360", res.EmployerUnemployment, "employer unemployment")
	assertDecimal(t, "90", res.AccidentInsurance, "accident insurance")
	assertDecimal(t, "22140", res.TotalEmployerCost, "total employer cost")
	assert.Empty(t, res.Warnings)
}

func TestCalculate_OvertimePay(t *testing.T) {
	// 90 overtime minutes at hourly 100.00 and multiplier 1.5.
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("18000"),
		Attendance: []attendance.AttendanceDay{
			approvedDay(480, 60),
			approvedDay(480, 30),
		},
		Params: testYearParams(),
		Policy: payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "225", res.OvertimePay, "overtime pay")
	assertDecimal(t, "18225", res.GrossSalary, "gross salary")
}

func TestCalculate_OvertimeUsesRoundedHourlyRate(t *testing.T) {
	// 10000 / 180 does not divide evenly; the hourly rate is a payslip
	// line rounded to 55.56 before the multiplication, so three overtime
	// hours pay 3 x 55.56 x 1.5 = 250.02 rather than 250.00 off the
	// unrounded rate.
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("10000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 180)},
		Params:     testYearParams(),
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "250.02", res.OvertimePay, "overtime pay")
	assertDecimal(t, "10250.02", res.GrossSalary, "gross salary")
}

func TestCalculate_Adjustments(t *testing.T) {
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("10000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     testYearParams(),
		Adjustments: payrun.Adjustments{
			Bonus:           d("1000"),
			CashAllowance:   d("500"),
			InKindAllowance: d("200"),
			Advances:        d("300"),
			Garnishments:    d("150"),
		},
		Policy: payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "11700", res.GrossSalary, "gross salary")
	assertDecimal(t, "9945", res.IncomeTaxBase, "income tax base")
	assertDecimal(t, "1491.75", res.IncomeTax, "income tax")
	assertDecimal(t, "88.80", res.StampTax, "stamp tax")
	assertDecimal(t, "7914.45", res.NetSalary, "net salary")
}

func TestCalculate_FloorClamp(t *testing.T) {
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("3000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     testYearParams(),
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	// Contributions come off the raised base, the tax base off raw gross.
	assertDecimal(t, "5000", res.ContributionBase, "contribution base")
	assertDecimal(t, "700", res.EmployeeContribution, "employee contribution")
	assertDecimal(t, "50", res.EmployeeUnemployment, "employee unemployment")
	assertDecimal(t, "2250", res.IncomeTaxBase, "income tax base")
	assertDecimal(t, "337.50", res.IncomeTax, "income tax")
	assertDecimal(t, "1889.73", res.NetSalary, "net salary")
	assertDecimal(t, "4150", res.TotalEmployerCost, "total employer cost")
	assert.Contains(t, res.Warnings, "contribution base raised to the statutory floor")
}

func TestCalculate_BaseAtFloorBoundary(t *testing.T) {
	// Gross exactly at the floor is a minimum-wage payslip, not an
	// anomaly: the base passes through unclamped and no warning fires.
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("5000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     testYearParams(),
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "5000", res.ContributionBase, "contribution base")
	assertDecimal(t, "700", res.EmployeeContribution, "employee contribution")
	assertDecimal(t, "4250", res.IncomeTaxBase, "income tax base")
	assertDecimal(t, "637.50", res.IncomeTax, "income tax")
	assertDecimal(t, "3574.55", res.NetSalary, "net salary")
	assert.Empty(t, res.Warnings)
}

func TestCalculate_CeilingClamp(t *testing.T) {
	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("40000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     testYearParams(),
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "30000", res.ContributionBase, "contribution base")
	assertDecimal(t, "4200", res.EmployeeContribution, "employee contribution")
	assertDecimal(t, "300", res.EmployeeUnemployment, "employee unemployment")
	assertDecimal(t, "35500", res.IncomeTaxBase, "income tax base")
	// 10000 @ 15% + 15000 @ 20% + 10500 @ 27%
	assertDecimal(t, "7335", res.IncomeTax, "income tax")
	assertDecimal(t, "27861.40", res.NetSalary, "net salary")
	assertDecimal(t, "46900", res.TotalEmployerCost, "total employer cost")
	assert.Contains(t, res.Warnings, "contribution base capped at the statutory ceiling")
}

func TestCalculate_NegativeTaxBase(t *testing.T) {
	// A floor far above gross makes the contributions exceed the gross
	// itself: tax base goes negative, income tax must be zero, and the
	// calculation finishes with warnings instead of failing.
	p := testYearParams()
	p.ContributionBaseFloor = d("25000")

	res, err := payrun.Calculate(payrun.CalcInput{
		BaseSalary: d("3000"),
		Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
		Params:     p,
		Policy:     payrun.DefaultCalcPolicy(),
	})

	assert.NoError(t, err)
	assertDecimal(t, "-750", res.IncomeTaxBase, "income tax base")
	assertDecimal(t, "0", res.IncomeTax, "income tax")
	assertDecimal(t, "-772.77", res.NetSalary, "net salary")
	assert.Contains(t, res.Warnings, "contribution base raised to the statutory floor")
	assert.Contains(t, res.Warnings, "income tax base is negative, deductions exceed gross")
	assert.Contains(t, res.Warnings, "net salary is negative")
}

func TestCalculate_NonPositiveSalary(t *testing.T) {
	for _, salary := range []string{"0", "-1200"} {
		_, err := payrun.Calculate(payrun.CalcInput{
			BaseSalary: d(salary),
			Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
			Params:     testYearParams(),
			Policy:     payrun.DefaultCalcPolicy(),
		})
		assert.ErrorIs(t, err, payrunerrors.ErrNonPositiveSalary)
	}
}

func TestCalculate_NetPlusDeductionsEqualsGross(t *testing.T) {
	for _, salary := range []string{"1234.56", "7890.12", "15000", "29999.99", "83500"} {
		res, err := payrun.Calculate(payrun.CalcInput{
			BaseSalary: d(salary),
			Attendance: []attendance.AttendanceDay{approvedDay(480, 45)},
			Params:     testYearParams(),
			Policy:     payrun.DefaultCalcPolicy(),
		})
		assert.NoError(t, err)
		assert.True(t, res.NetSalary.Add(res.TotalDeductions).Equal(res.GrossSalary),
			"salary %s: net %s + deductions %s != gross %s",
			salary, res.NetSalary, res.TotalDeductions, res.GrossSalary)
	}
}

func TestCalculate_TaxMonotonicInBase(t *testing.T) {
	prev := decimal.Zero
	for _, salary := range []string{"4000", "9000", "14000", "26000", "40000", "75000"} {
		res, err := payrun.Calculate(payrun.CalcInput{
			BaseSalary: d(salary),
			Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
			Params:     testYearParams(),
			Policy:     payrun.DefaultCalcPolicy(),
		})
		assert.NoError(t, err)
		assert.True(t, res.IncomeTax.GreaterThanOrEqual(prev),
			"salary %s: tax %s dropped below %s", salary, res.IncomeTax, prev)
		prev = res.IncomeTax
	}
}

func TestCalculate_EffectiveRateBelowTopMarginalRate(t *testing.T) {
	// The bracket walk taxes the lower slices at the lower rates, so the
	// effective rate can approach the terminal 27% but never exceed it.
	topRate := d("0.27")
	for _, salary := range []string{"6000", "14000", "26000", "40000", "120000", "500000"} {
		res, err := payrun.Calculate(payrun.CalcInput{
			BaseSalary: d(salary),
			Attendance: []attendance.AttendanceDay{approvedDay(480, 0)},
			Params:     testYearParams(),
			Policy:     payrun.DefaultCalcPolicy(),
		})
		assert.NoError(t, err)
		assert.True(t, res.IncomeTax.LessThanOrEqual(res.IncomeTaxBase.Mul(topRate)),
			"salary %s: tax %s exceeds base %s at the top rate", salary, res.IncomeTax, res.IncomeTaxBase)
	}
}
