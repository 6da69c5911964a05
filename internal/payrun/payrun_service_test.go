package payrun_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-payrun/internal/attendance"
	"go-payrun/internal/employee"
	"go-payrun/internal/messaging/kafka"
	"go-payrun/internal/params"
	"go-payrun/internal/payrun"
	payrunerrors "go-payrun/internal/payrun/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeRunRepository struct {
	withTxFn             func(tx *sql.Tx) payrun.Repository
	createWithItemsFn    func(ctx context.Context, run *payrun.PayrollRun) error
	findByPeriodFn       func(ctx context.Context, companyID string, year, month int) (*payrun.PayrollRun, error)
	findAllByCompanyFn   func(ctx context.Context, companyID string) ([]payrun.PayrollRun, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*payrun.PayrollRun, error)
	findItemsByRunFn     func(ctx context.Context, companyID, runID string) ([]payrun.PayrollRunItem, error)
	updateStatusFn       func(ctx context.Context, companyID, runID, status string) error
}

func (f *fakeRunRepository) WithTx(tx *sql.Tx) payrun.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRunRepository) CreateWithItems(ctx context.Context, run *payrun.PayrollRun) error {
	if f.createWithItemsFn != nil {
		return f.createWithItemsFn(ctx, run)
	}
	return nil
}

func (f *fakeRunRepository) FindByPeriod(ctx context.Context, companyID string, year, month int) (*payrun.PayrollRun, error) {
	if f.findByPeriodFn != nil {
		return f.findByPeriodFn(ctx, companyID, year, month)
	}
	return nil, nil
}

func (f *fakeRunRepository) FindAllByCompany(ctx context.Context, companyID string) ([]payrun.PayrollRun, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeRunRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*payrun.PayrollRun, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, payrunerrors.ErrRunNotFound
}

func (f *fakeRunRepository) FindItemsByRun(ctx context.Context, companyID, runID string) ([]payrun.PayrollRunItem, error) {
	if f.findItemsByRunFn != nil {
		return f.findItemsByRunFn(ctx, companyID, runID)
	}
	return nil, nil
}

func (f *fakeRunRepository) UpdateStatus(ctx context.Context, companyID, runID, status string) error {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, companyID, runID, status)
	}
	return nil
}

type fakeParamsRepository struct {
	findFn func(ctx context.Context, companyID string, year int) (*params.YearParameters, error)
}

func (f *fakeParamsRepository) FindByCompanyAndYear(ctx context.Context, companyID string, year int) (*params.YearParameters, error) {
	if f.findFn != nil {
		return f.findFn(ctx, companyID, year)
	}
	p := testYearParams()
	return &p, nil
}

type fakeEmployeeRepository struct {
	findActiveFn func(ctx context.Context, companyID string, filter employee.ActiveFilter) ([]employee.Employee, error)
}

func (f *fakeEmployeeRepository) FindActiveByCompany(ctx context.Context, companyID string, filter employee.ActiveFilter) ([]employee.Employee, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, companyID, filter)
	}
	return nil, nil
}

type fakeAttendanceRepository struct {
	findFn func(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) ([]attendance.AttendanceDay, error)
}

func (f *fakeAttendanceRepository) FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, from, to time.Time) ([]attendance.AttendanceDay, error) {
	if f.findFn != nil {
		return f.findFn(ctx, companyID, employeeIDs, from, to)
	}
	return nil, nil
}

type fakeAccrualGenerator struct {
	generateFn func(ctx context.Context, companyID, runID string) ([]string, error)
}

func (f *fakeAccrualGenerator) GenerateForRun(ctx context.Context, companyID, runID string) ([]string, error) {
	if f.generateFn != nil {
		return f.generateFn(ctx, companyID, runID)
	}
	return nil, nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type runServiceDeps struct {
	db             *sql.DB
	sqlMock        sqlmock.Sqlmock
	service        payrun.Service
	repo           *fakeRunRepository
	paramsRepo     *fakeParamsRepository
	employeeRepo   *fakeEmployeeRepository
	attendanceRepo *fakeAttendanceRepository
	accruals       *fakeAccrualGenerator
	outbox         *fakeOutboxRepository
}

func setupRunServiceTest(t *testing.T) *runServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	deps := &runServiceDeps{
		db:             db,
		sqlMock:        sqlMock,
		repo:           &fakeRunRepository{},
		paramsRepo:     &fakeParamsRepository{},
		employeeRepo:   &fakeEmployeeRepository{},
		attendanceRepo: &fakeAttendanceRepository{},
		accruals:       &fakeAccrualGenerator{},
		outbox:         &fakeOutboxRepository{},
	}
	deps.service = payrun.NewServiceWithSideEffects(
		db,
		deps.repo,
		deps.paramsRepo,
		deps.employeeRepo,
		deps.attendanceRepo,
		deps.accruals,
		deps.outbox,
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func activeEmployee(companyID uuid.UUID, name, salary string) employee.Employee {
	return employee.Employee{
		ID:         uuid.New(),
		CompanyID:  companyID,
		FullName:   name,
		BaseSalary: d(salary),
		Active:     true,
	}
}

func approvedDayFor(companyID, employeeID uuid.UUID, workDate time.Time, overtimeMinutes int) attendance.AttendanceDay {
	return attendance.AttendanceDay{
		ID:              uuid.New(),
		CompanyID:       companyID,
		EmployeeID:      employeeID,
		WorkDate:        workDate,
		WorkedMinutes:   480,
		OvertimeMinutes: overtimeMinutes,
		Status:          attendance.StatusManagerApproved,
	}
}

func TestRunService_Run_IsolatesFailedEmployees(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	companyID := companyUUID.String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	good1 := activeEmployee(companyUUID, "Alice Demir", "18000")
	good2 := activeEmployee(companyUUID, "Bora Kaya", "12500")
	broken := activeEmployee(companyUUID, "Cem Aksoy", "0")

	deps.employeeRepo.findActiveFn = func(ctx context.Context, cid string, filter employee.ActiveFilter) ([]employee.Employee, error) {
		return []employee.Employee{good1, good2, broken}, nil
	}
	workDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	deps.attendanceRepo.findFn = func(ctx context.Context, cid string, ids []string, from, to time.Time) ([]attendance.AttendanceDay, error) {
		assert.Len(t, ids, 3)
		return []attendance.AttendanceDay{
			approvedDayFor(companyUUID, good1.ID, workDate, 0),
			approvedDayFor(companyUUID, good2.ID, workDate, 0),
			approvedDayFor(companyUUID, broken.ID, workDate, 0),
		}, nil
	}

	var persisted *payrun.PayrollRun
	deps.repo.createWithItemsFn = func(ctx context.Context, run *payrun.PayrollRun) error {
		persisted = run
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Run(ctx, companyID, actorID, payrun.RunPayrollRequest{Year: 2026, Month: 3})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.ProcessedCount)
	assert.Equal(t, 2, resp.SucceededCount)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Len(t, resp.FailedEmployees, 1)
	assert.Equal(t, broken.ID.String(), resp.FailedEmployees[0].EmployeeID)
	assert.Equal(t, "missing salary", resp.FailedEmployees[0].Reason)
	assert.Equal(t, payrun.StatusCalculated, resp.Status)

	assert.NotNil(t, persisted)
	assert.Len(t, persisted.Items, 2)
	assert.Len(t, persisted.Failures, 1)
	assert.Equal(t, 3, persisted.ProcessedCount)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_DuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	deps.repo.findByPeriodFn = func(ctx context.Context, cid string, year, month int) (*payrun.PayrollRun, error) {
		return &payrun.PayrollRun{ID: uuid.New(), Year: year, Month: month}, nil
	}

	_, err := deps.service.Run(ctx, companyID, actorID, payrun.RunPayrollRequest{Year: 2026, Month: 3})

	assert.ErrorIs(t, err, payrunerrors.ErrRunExists)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_SynthesizesDefaultAttendance(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	emp := activeEmployee(companyUUID, "Derya Can", "18000")
	deps.employeeRepo.findActiveFn = func(ctx context.Context, cid string, filter employee.ActiveFilter) ([]employee.Employee, error) {
		return []employee.Employee{emp}, nil
	}
	// No attendance at all for a 31-day month.
	deps.attendanceRepo.findFn = func(ctx context.Context, cid string, ids []string, from, to time.Time) ([]attendance.AttendanceDay, error) {
		assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), to)
		return nil, nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Run(ctx, companyUUID.String(), actorID, payrun.RunPayrollRequest{Year: 2026, Month: 1})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.SucceededCount)
	assert.Contains(t, resp.Warnings, "no attendance for Derya Can, assumed 30 working days")
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_UnapprovedAttendancePolicy(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	emp := activeEmployee(companyUUID, "Ece Polat", "15000")
	deps.employeeRepo.findActiveFn = func(ctx context.Context, cid string, filter employee.ActiveFilter) ([]employee.Employee, error) {
		return []employee.Employee{emp}, nil
	}
	deps.attendanceRepo.findFn = func(ctx context.Context, cid string, ids []string, from, to time.Time) ([]attendance.AttendanceDay, error) {
		day := approvedDayFor(companyUUID, emp.ID, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), 0)
		day.Status = attendance.StatusPending
		return []attendance.AttendanceDay{day}, nil
	}

	resp, err := deps.service.Run(ctx, companyUUID.String(), actorID, payrun.RunPayrollRequest{
		Year:                      2026,
		Month:                     3,
		RequireApprovedAttendance: true,
	})

	// The only employee failed, so nothing is persisted.
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, 1, resp.FailedCount)
	assert.Equal(t, "unapproved attendance", resp.FailedEmployees[0].Reason)
	assert.Contains(t, resp.Warnings, "no employees could be calculated")
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_NoMatchingEmployees(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	resp, err := deps.service.Run(ctx, companyID, actorID, payrun.RunPayrollRequest{Year: 2026, Month: 3})

	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Zero(t, resp.ProcessedCount)
	assert.Contains(t, resp.Warnings, "no active employees matched the run filter")
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_InvalidPeriod(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.Run(ctx, companyID, actorID, payrun.RunPayrollRequest{Year: 2026, Month: 13})
	assert.ErrorIs(t, err, payrunerrors.ErrInvalidPeriod)

	_, err = deps.service.Run(ctx, companyID, actorID, payrun.RunPayrollRequest{Year: 1999, Month: 6})
	assert.ErrorIs(t, err, payrunerrors.ErrInvalidPeriod)
}

func TestRunService_Run_AccrualAndSyncSideEffects(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	emp := activeEmployee(companyUUID, "Fuat Demirel", "20000")
	deps.employeeRepo.findActiveFn = func(ctx context.Context, cid string, filter employee.ActiveFilter) ([]employee.Employee, error) {
		return []employee.Employee{emp}, nil
	}
	deps.attendanceRepo.findFn = func(ctx context.Context, cid string, ids []string, from, to time.Time) ([]attendance.AttendanceDay, error) {
		return []attendance.AttendanceDay{
			approvedDayFor(companyUUID, emp.ID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 0),
		}, nil
	}

	accrualCalled := false
	deps.accruals.generateFn = func(ctx context.Context, cid, runID string) ([]string, error) {
		accrualCalled = true
		return nil, nil
	}
	outboxCalled := false
	deps.outbox.createFn = func(ctx context.Context, event kafka.OutboxEvent) error {
		outboxCalled = true
		assert.Equal(t, "payroll_run", event.AggregateType)
		return nil
	}

	// Run persist, then the outbox enqueue in its own transaction.
	expectTx(t, deps.sqlMock, true)
	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Run(ctx, companyUUID.String(), actorID, payrun.RunPayrollRequest{
		Year:           2026,
		Month:          4,
		CreateAccruals: true,
		AutoSync:       true,
	})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, accrualCalled)
	assert.True(t, outboxCalled)
	assert.Equal(t, payrun.StatusAccrued, resp.Status)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_Run_AccrualFailureIsWarning(t *testing.T) {
	ctx := context.Background()
	companyUUID := uuid.New()
	actorID := uuid.New().String()

	deps := setupRunServiceTest(t)
	defer deps.db.Close()

	emp := activeEmployee(companyUUID, "Gül Şahin", "20000")
	deps.employeeRepo.findActiveFn = func(ctx context.Context, cid string, filter employee.ActiveFilter) ([]employee.Employee, error) {
		return []employee.Employee{emp}, nil
	}
	deps.accruals.generateFn = func(ctx context.Context, cid, runID string) ([]string, error) {
		return nil, errors.New("accrual store unavailable")
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.service.Run(ctx, companyUUID.String(), actorID, payrun.RunPayrollRequest{
		Year:           2026,
		Month:          5,
		CreateAccruals: true,
	})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	// The run stays CALCULATED; the failure surfaces as a warning.
	assert.Equal(t, payrun.StatusCalculated, resp.Status)
	assert.Contains(t, resp.Warnings, "accrual generation failed: accrual store unavailable")
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestRunService_MarkSynced(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	runID := uuid.New().String()

	t.Run("from accrued", func(t *testing.T) {
		deps := setupRunServiceTest(t)
		defer deps.db.Close()

		var updatedStatus string
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payrun.PayrollRun, error) {
			return &payrun.PayrollRun{ID: uuid.MustParse(id), Status: payrun.StatusAccrued}, nil
		}
		deps.repo.updateStatusFn = func(ctx context.Context, cid, id, status string) error {
			updatedStatus = status
			return nil
		}

		err := deps.service.MarkSynced(ctx, companyID, runID)

		assert.NoError(t, err)
		assert.Equal(t, payrun.StatusSynced, updatedStatus)
	})

	t.Run("draft is rejected", func(t *testing.T) {
		deps := setupRunServiceTest(t)
		defer deps.db.Close()

		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, id string) (*payrun.PayrollRun, error) {
			return &payrun.PayrollRun{ID: uuid.MustParse(id), Status: payrun.StatusDraft}, nil
		}

		err := deps.service.MarkSynced(ctx, companyID, runID)

		assert.ErrorIs(t, err, payrunerrors.ErrRunNotCalculated)
	})
}
