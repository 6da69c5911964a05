package events

import "time"

const (
	PayrollRunSyncRequestedTopic = "fin.payroll.run.sync.requested.v1"
	PayrollRunSyncAckedTopic     = "fin.payroll.run.sync.acked.v1"

	TypePayrollRunSyncRequested = "payroll_run.sync_requested"
)

// PayrollRunSyncRequestedEvent asks the downstream finance system to
// ingest a calculated run's totals. Monetary fields are decimal strings
// so no precision is lost on the wire.
type PayrollRunSyncRequestedEvent struct {
	EventType         string    `json:"event_type"`
	RunID             string    `json:"run_id"`
	CompanyID         string    `json:"company_id"`
	Year              int       `json:"year"`
	Month             int       `json:"month"`
	TotalNet          string    `json:"total_net"`
	TotalEmployerCost string    `json:"total_employer_cost"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// PayrollRunSyncAckedEvent is the finance system's acknowledgement.
type PayrollRunSyncAckedEvent struct {
	RunID      string    `json:"run_id"`
	CompanyID  string    `json:"company_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
