package employee

import (
	"context"

	"go-payrun/internal/tenant"

	"gorm.io/gorm"
)

// ActiveFilter narrows the employee set for one bulk run. Both fields
// are optional; an empty filter selects every active employee.
type ActiveFilter struct {
	DepartmentID *string
	EmployeeIDs  []string
}

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindActiveByCompany(ctx context.Context, companyID string, filter ActiveFilter) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string, filter ActiveFilter) ([]Employee, error) {
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("active = ?", true)

	if filter.DepartmentID != nil {
		q = q.Where("department_id = ?", *filter.DepartmentID)
	}
	if len(filter.EmployeeIDs) > 0 {
		q = q.Where("id IN ?", filter.EmployeeIDs)
	}

	var rows []Employee
	err := q.Order("full_name ASC").Find(&rows).Error
	return rows, err
}
