package accrual

import "github.com/shopspring/decimal"

type AccrualResponse struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	EmployeeID  string          `json:"employee_id"`
	Status      string          `json:"status"`
	AccrualDate string          `json:"accrual_date"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	PaidAt      *string         `json:"paid_at,omitempty"`
}

type GenerateAccrualsResponse struct {
	RunID        string   `json:"run_id"`
	CreatedCount int      `json:"created_count"`
	SkippedCount int      `json:"skipped_count"`
	Warnings     []string `json:"warnings,omitempty"`
}

type RecordPaymentRequest struct {
	AccountRef  string `json:"account_ref" binding:"required"`
	PaymentDate string `json:"payment_date" binding:"required"`
}

type PaymentResponse struct {
	ID          string          `json:"id"`
	AccrualID   string          `json:"accrual_id"`
	AccountRef  string          `json:"account_ref"`
	PaymentDate string          `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
}
