package attendance

import (
	"context"
	"time"

	"go-payrun/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	// FindByEmployeesAndRange loads attendance for every given employee
	// over [from, to] in one query. The bulk run depends on this being a
	// single batched fetch, never a per-employee loop.
	FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) ([]AttendanceDay, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) ([]AttendanceDay, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var rows []AttendanceDay
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id IN ?", employeeIDs).
		Where("work_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("employee_id, work_date ASC").
		Find(&rows).Error
	return rows, err
}
