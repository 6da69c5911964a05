package accrual

import (
	"context"
	"database/sql"
	"errors"

	accrualerrors "go-payrun/internal/accrual/errors"
	"go-payrun/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=accrual_repo.go -destination=mock/accrual_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *AccrualRecord) error
	ExistsForRunAndEmployee(ctx context.Context, companyID, runID, employeeID string) (bool, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]AccrualRecord, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*AccrualRecord, error)
	Update(ctx context.Context, rec *AccrualRecord) error
	CreatePayment(ctx context.Context, p *PaymentTransaction) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn returns the gorm handle every query runs on. When the repository
// is bridged onto a *sql.Tx the statement's connection pool is swapped
// for that transaction, so the status update and the payment insert of
// one booking commit or roll back together.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, rec *AccrualRecord) error {
	return r.conn(ctx).Create(rec).Error
}

func (r *repository) ExistsForRunAndEmployee(ctx context.Context, companyID, runID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&AccrualRecord{}).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Where("employee_id = ?", employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]AccrualRecord, error) {
	var rows []AccrualRecord
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("accrual_date DESC, created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*AccrualRecord, error) {
	var rec AccrualRecord
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, accrualerrors.ErrAccrualNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) Update(ctx context.Context, rec *AccrualRecord) error {
	return r.conn(ctx).Save(rec).Error
}

func (r *repository) CreatePayment(ctx context.Context, p *PaymentTransaction) error {
	return r.conn(ctx).Create(p).Error
}
