package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending         = "PENDING"
	StatusManagerApproved = "MANAGER_APPROVED"
	StatusLocked          = "LOCKED"
	// StatusAutoDefault marks the synthetic aggregate record the bulk run
	// builds when an employee has no real attendance for the period. It
	// exists only in memory and is never persisted.
	StatusAutoDefault = "AUTO_DEFAULT"
)

// AttendanceDay is one employee-day as supplied by the attendance
// collaborator. Read-only to this core.
type AttendanceDay struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID      uuid.UUID `gorm:"type:uuid;not null;index"`
	WorkDate        time.Time `gorm:"column:work_date;type:date;not null;index"`
	WorkedMinutes   int       `gorm:"not null;default:0"`
	OvertimeMinutes int       `gorm:"not null;default:0"`
	Status          string    `gorm:"type:varchar(20);not null;default:PENDING"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (AttendanceDay) TableName() string {
	return "attendance_days"
}

// Approved reports whether this record satisfies a run policy that
// requires fully approved attendance. Synthetic defaults always pass;
// they represent policy, not unverified clock data.
func (a AttendanceDay) Approved() bool {
	switch a.Status {
	case StatusManagerApproved, StatusLocked, StatusAutoDefault:
		return true
	default:
		return false
	}
}

// Synthetic reports whether this record was synthesized by the bulk run
// rather than collected.
func (a AttendanceDay) Synthetic() bool {
	return a.Status == StatusAutoDefault
}

// SynthesizeDefault builds the single in-memory pseudo-record used when
// an employee has no attendance for the period: min(defaultWorkingDays,
// days in month) days at dailyHours each, no overtime. WorkDate is the
// first day of the period so downstream partitioning stays stable.
func SynthesizeDefault(companyID, employeeID uuid.UUID, year, month, defaultWorkingDays, dailyHours int) AttendanceDay {
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := defaultWorkingDays
	if days > daysInMonth {
		days = daysInMonth
	}

	return AttendanceDay{
		CompanyID:     companyID,
		EmployeeID:    employeeID,
		WorkDate:      time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		WorkedMinutes: days * dailyHours * 60,
		Status:        StatusAutoDefault,
	}
}
