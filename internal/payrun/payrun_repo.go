package payrun

import (
	"context"
	"database/sql"
	"errors"

	payrunerrors "go-payrun/internal/payrun/errors"
	"go-payrun/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payrun_repo.go -destination=mock/payrun_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// CreateWithItems persists the run header, items and failures as one
	// unit. Either everything lands or nothing does.
	CreateWithItems(ctx context.Context, run *PayrollRun) error
	FindByPeriod(ctx context.Context, companyID string, year, month int) (*PayrollRun, error)
	FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error)
	FindItemsByRun(ctx context.Context, companyID, runID string) ([]PayrollRunItem, error)
	UpdateStatus(ctx context.Context, companyID, runID, status string) error
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
// for that transaction, so the run header, items and failures land in
// the caller's transaction rather than in implicit autocommits.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) CreateWithItems(ctx context.Context, run *PayrollRun) error {
	err := r.conn(ctx).Create(run).Error
	if isUniqueViolation(err) {
		return payrunerrors.ErrRunExists
	}
	return err
}

func (r *repository) FindByPeriod(ctx context.Context, companyID string, year, month int) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&run, "year = ? AND month = ?", year, month).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("year DESC, month DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Failures").
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payrunerrors.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindItemsByRun(ctx context.Context, companyID, runID string) ([]PayrollRunItem, error) {
	var items []PayrollRunItem
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("run_id = ?", runID).
		Order("employee_id ASC").
		Find(&items).Error
	return items, err
}

func (r *repository) UpdateStatus(ctx context.Context, companyID, runID, status string) error {
	return r.db.WithContext(ctx).
		Model(&PayrollRun{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", runID).
		Update("status", status).Error
}

// isUniqueViolation detects a Postgres duplicate-key error (SQLSTATE
// 23505), the authoritative guard for the one-run-per-period rule.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
