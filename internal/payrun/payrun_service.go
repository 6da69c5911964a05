package payrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go-payrun/internal/attendance"
	"go-payrun/internal/employee"
	"go-payrun/internal/events"
	"go-payrun/internal/messaging/kafka"
	"go-payrun/internal/params"
	payrunerrors "go-payrun/internal/payrun/errors"
	"go-payrun/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runWorkerLimit bounds the per-employee fan-out. The calculation is
// CPU-light; the limit exists so result merging and DB writes stay
// within the persistence layer's capacity.
const runWorkerLimit = 8

const (
	reasonMissingSalary        = "missing salary"
	reasonUnapprovedAttendance = "unapproved attendance"
)

//go:generate mockgen -source=payrun_service.go -destination=mock/payrun_service_mock.go -package=mock
type Service interface {
	Run(ctx context.Context, companyID, actorID string, req RunPayrollRequest) (RunPayrollResponse, error)
	GetAll(ctx context.Context, companyID string) ([]RunSummaryResponse, error)
	GetByID(ctx context.Context, companyID, id string) (RunDetailResponse, error)
	GetItems(ctx context.Context, companyID, runID string) ([]RunItemResponse, error)
	MarkSynced(ctx context.Context, companyID, runID string) error
}

// AccrualGenerator is implemented by the accrual package. Declared here
// so the orchestrator can trigger accrual bookkeeping without depending
// on that package.
type AccrualGenerator interface {
	GenerateForRun(ctx context.Context, companyID, runID string) ([]string, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	paramsRepo     params.Repository
	employeeRepo   employee.Repository
	attendanceRepo attendance.Repository
	accruals       AccrualGenerator
	outbox         kafka.OutboxRepository
	policy         CalcPolicy
}

func NewService(
	db *sql.DB,
	repo Repository,
	paramsRepo params.Repository,
	employeeRepo employee.Repository,
	attendanceRepo attendance.Repository,
) Service {
	return &service{
		db:             db,
		repo:           repo,
		paramsRepo:     paramsRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		policy:         DefaultCalcPolicy(),
	}
}

// NewServiceWithSideEffects wires the optional post-run steps: accrual
// generation and the finance-sync outbox.
func NewServiceWithSideEffects(
	db *sql.DB,
	repo Repository,
	paramsRepo params.Repository,
	employeeRepo employee.Repository,
	attendanceRepo attendance.Repository,
	accruals AccrualGenerator,
	outbox kafka.OutboxRepository,
) Service {
	return &service{
		db:             db,
		repo:           repo,
		paramsRepo:     paramsRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		accruals:       accruals,
		outbox:         outbox,
		policy:         DefaultCalcPolicy(),
	}
}

// employeeOutcome is one worker's private result slot. Workers never
// share state; the slots are merged after the group joins.
type employeeOutcome struct {
	item     *PayrollRunItem
	failure  *FailedEmployee
	warnings []string
}

func (s *service) Run(
	ctx context.Context,
	companyID, actorID string,
	req RunPayrollRequest,
) (RunPayrollResponse, error) {
	log := contextutil.GetLogger(ctx, zap.L()).Named("payrun.service")

	companyUUID, actorUUID, err := validateRunRequest(companyID, actorID, req)
	if err != nil {
		return RunPayrollResponse{}, err
	}

	resp := RunPayrollResponse{Year: req.Year, Month: req.Month}

	// Fast-path duplicate check. The unique index on
	// (company_id, year, month) remains the authoritative guard.
	existing, err := s.repo.FindByPeriod(ctx, companyID, req.Year, req.Month)
	if err != nil {
		return RunPayrollResponse{}, err
	}
	if existing != nil {
		return RunPayrollResponse{}, payrunerrors.ErrRunExists
	}

	// Missing parameters abort the whole run; nothing can be calculated.
	yearParams, err := s.paramsRepo.FindByCompanyAndYear(ctx, companyID, req.Year)
	if err != nil {
		return RunPayrollResponse{}, err
	}
	if err := yearParams.Validate(); err != nil {
		return RunPayrollResponse{}, err
	}

	employees, err := s.employeeRepo.FindActiveByCompany(ctx, companyID, employee.ActiveFilter{
		DepartmentID: req.DepartmentID,
		EmployeeIDs:  req.EmployeeIDs,
	})
	if err != nil {
		return RunPayrollResponse{}, err
	}
	if len(employees) == 0 {
		resp.Warnings = append(resp.Warnings, "no active employees matched the run filter")
		return resp, nil
	}

	periodStart, periodEnd := PeriodBounds(req.Year, req.Month)

	employeeIDs := make([]string, len(employees))
	for i, emp := range employees {
		employeeIDs[i] = emp.ID.String()
	}

	// One batched fetch for the whole month, never per employee.
	days, err := s.attendanceRepo.FindByEmployeesAndRange(ctx, companyID, employeeIDs, periodStart, periodEnd)
	if err != nil {
		return RunPayrollResponse{}, err
	}

	byEmployee := make(map[uuid.UUID][]attendance.AttendanceDay, len(employees))
	for _, d := range days {
		byEmployee[d.EmployeeID] = append(byEmployee[d.EmployeeID], d)
	}

	runID := uuid.New()

	// Fan out per employee. Each worker owns its outcome slot; failures
	// are captured there and never escape the loop.
	outcomes := make([]employeeOutcome, len(employees))

	var g errgroup.Group
	g.SetLimit(runWorkerLimit)
	for i, emp := range employees {
		g.Go(func() error {
			outcomes[i] = s.processEmployee(runID, companyUUID, emp, byEmployee[emp.ID], *yearParams, req)
			return nil
		})
	}
	_ = g.Wait()

	run := &PayrollRun{
		ID:          runID,
		CompanyID:   companyUUID,
		Year:        req.Year,
		Month:       req.Month,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      StatusCalculated,
		TriggeredBy: actorUUID,
	}

	for _, out := range outcomes {
		run.ProcessedCount++
		switch {
		case out.item != nil:
			run.SucceededCount++
			run.Items = append(run.Items, *out.item)
		case out.failure != nil:
			run.FailedCount++
			run.Failures = append(run.Failures, RunFailure{
				ID:         uuid.New(),
				RunID:      runID,
				CompanyID:  companyUUID,
				EmployeeID: uuid.MustParse(out.failure.EmployeeID),
				FullName:   out.failure.FullName,
				Reason:     out.failure.Reason,
			})
			resp.FailedEmployees = append(resp.FailedEmployees, *out.failure)
		}
		resp.Warnings = append(resp.Warnings, out.warnings...)
	}

	resp.ProcessedCount = run.ProcessedCount
	resp.SucceededCount = run.SucceededCount
	resp.FailedCount = run.FailedCount

	// Nothing succeeded: report a failed run, persist nothing.
	if run.SucceededCount == 0 {
		resp.Warnings = append(resp.Warnings, "no employees could be calculated")
		return resp, nil
	}

	if err := s.persistRun(ctx, run); err != nil {
		return RunPayrollResponse{}, err
	}

	resp.Success = true
	resp.Status = run.Status
	id := runID.String()
	resp.RunID = &id

	log.Info("payroll run calculated",
		zap.String("run_id", id),
		zap.Int("processed", run.ProcessedCount),
		zap.Int("succeeded", run.SucceededCount),
		zap.Int("failed", run.FailedCount),
	)

	// Accrual bookkeeping failure leaves the calculated figures valid.
	if req.CreateAccruals && s.accruals != nil {
		warnings, err := s.accruals.GenerateForRun(ctx, companyID, id)
		resp.Warnings = append(resp.Warnings, warnings...)
		if err != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("accrual generation failed: %v", err))
			log.Warn("accrual generation failed", zap.String("run_id", id), zap.Error(err))
		} else {
			resp.Status = StatusAccrued
		}
	}

	// Finance sync is best-effort: enqueue and move on.
	if req.AutoSync {
		if err := s.enqueueFinanceSync(ctx, run); err != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("finance sync scheduling failed: %v", err))
			log.Warn("finance sync enqueue failed", zap.String("run_id", id), zap.Error(err))
		}
	}

	return resp, nil
}

// processEmployee resolves attendance, enforces run policy and invokes
// the calculator for one employee. Any panic out of the arithmetic is
// converted into a per-employee failure so the batch always continues.
func (s *service) processEmployee(
	runID, companyID uuid.UUID,
	emp employee.Employee,
	days []attendance.AttendanceDay,
	yearParams params.YearParameters,
	req RunPayrollRequest,
) (out employeeOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = employeeOutcome{failure: &FailedEmployee{
				EmployeeID: emp.ID.String(),
				FullName:   emp.FullName,
				Reason:     fmt.Sprintf("calculation error: %v", rec),
			}}
		}
	}()

	fail := func(reason string) employeeOutcome {
		return employeeOutcome{failure: &FailedEmployee{
			EmployeeID: emp.ID.String(),
			FullName:   emp.FullName,
			Reason:     reason,
		}}
	}

	if len(days) == 0 {
		synthetic := attendance.SynthesizeDefault(
			companyID, emp.ID,
			req.Year, req.Month,
			s.policy.DefaultWorkingDays, s.policy.DailyHours,
		)
		assumedDays := synthetic.WorkedMinutes / (s.policy.DailyHours * 60)
		out.warnings = append(out.warnings, fmt.Sprintf(
			"no attendance for %s, assumed %d working days", emp.FullName, assumedDays,
		))
		days = []attendance.AttendanceDay{synthetic}
	}

	if req.RequireApprovedAttendance {
		for _, d := range days {
			if !d.Synthetic() && !d.Approved() {
				return fail(reasonUnapprovedAttendance)
			}
		}
	}

	if !emp.BaseSalary.IsPositive() {
		return fail(reasonMissingSalary)
	}

	res, err := Calculate(CalcInput{
		EmployeeID:  emp.ID,
		BaseSalary:  emp.BaseSalary,
		Attendance:  days,
		Params:      yearParams,
		Adjustments: adjustmentsFor(req, emp.ID),
		Policy:      s.policy,
	})
	if err != nil {
		return fail(err.Error())
	}

	item := newItemFromResult(runID, companyID, emp.ID, res)
	out.item = &item

	for _, w := range res.Warnings {
		out.warnings = append(out.warnings, fmt.Sprintf("%s: %s", emp.FullName, w))
	}
	return out
}

// persistRun writes the run header, items and failures as one unit.
func (s *service) persistRun(ctx context.Context, run *PayrollRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.CreateWithItems(ctx, run); err != nil {
		return err
	}

	return tx.Commit()
}

// enqueueFinanceSync stores the sync request in the outbox; the producer
// worker forwards it to the finance system.
func (s *service) enqueueFinanceSync(ctx context.Context, run *PayrollRun) error {
	if s.outbox == nil {
		return fmt.Errorf("finance sync is not configured")
	}

	totalNet := "0"
	totalCost := "0"
	if len(run.Items) > 0 {
		net := run.Items[0].NetSalary
		cost := run.Items[0].TotalEmployerCost
		for _, item := range run.Items[1:] {
			net = net.Add(item.NetSalary)
			cost = cost.Add(item.TotalEmployerCost)
		}
		totalNet = net.String()
		totalCost = cost.String()
	}

	payload, err := json.Marshal(events.PayrollRunSyncRequestedEvent{
		EventType:         events.TypePayrollRunSyncRequested,
		RunID:             run.ID.String(),
		CompanyID:         run.CompanyID.String(),
		Year:              run.Year,
		Month:             run.Month,
		TotalNet:          totalNet,
		TotalEmployerCost: totalCost,
		OccurredAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.outbox.WithTx(tx)
	if err := qtx.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_run",
		AggregateID:   run.ID.String(),
		EventType:     events.TypePayrollRunSyncRequested,
		Topic:         events.PayrollRunSyncRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]RunSummaryResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, payrunerrors.ErrInvalidCompanyID
	}

	runs, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]RunSummaryResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapToSummary(run)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (RunDetailResponse, error) {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunDetailResponse{}, err
	}

	resp := RunDetailResponse{
		RunSummaryResponse: mapToSummary(*run),
		PeriodStart:        run.PeriodStart.Format("2006-01-02"),
		PeriodEnd:          run.PeriodEnd.Format("2006-01-02"),
	}
	for _, f := range run.Failures {
		resp.FailedEmployees = append(resp.FailedEmployees, FailedEmployee{
			EmployeeID: f.EmployeeID.String(),
			FullName:   f.FullName,
			Reason:     f.Reason,
		})
	}
	return resp, nil
}

func (s *service) GetItems(ctx context.Context, companyID, runID string) ([]RunItemResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, runID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindItemsByRun(ctx, companyID, runID)
	if err != nil {
		return nil, err
	}

	resp := make([]RunItemResponse, len(items))
	for i, item := range items {
		resp[i] = mapToItemResponse(item)
	}
	return resp, nil
}

// MarkSynced records the finance system's acknowledgement. Called from
// the sync-ack consumer, not the HTTP surface.
func (s *service) MarkSynced(ctx context.Context, companyID, runID string) error {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, runID)
	if err != nil {
		return err
	}
	if run.Status != StatusCalculated && run.Status != StatusAccrued {
		return payrunerrors.ErrRunNotCalculated
	}
	return s.repo.UpdateStatus(ctx, companyID, runID, StatusSynced)
}

func validateRunRequest(companyID, actorID string, req RunPayrollRequest) (uuid.UUID, uuid.UUID, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, payrunerrors.ErrInvalidCompanyID
	}

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, payrunerrors.ErrInvalidActorID
	}

	if req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		return uuid.Nil, uuid.Nil, payrunerrors.ErrInvalidPeriod
	}

	if req.DepartmentID != nil {
		if _, err := uuid.Parse(*req.DepartmentID); err != nil {
			return uuid.Nil, uuid.Nil, payrunerrors.ErrInvalidEmployeeFilter
		}
	}
	for _, id := range req.EmployeeIDs {
		if _, err := uuid.Parse(id); err != nil {
			return uuid.Nil, uuid.Nil, payrunerrors.ErrInvalidEmployeeFilter
		}
	}

	return companyUUID, actorUUID, nil
}

func adjustmentsFor(req RunPayrollRequest, employeeID uuid.UUID) Adjustments {
	adj, ok := req.Adjustments[employeeID.String()]
	if !ok {
		return Adjustments{}
	}
	return Adjustments{
		Bonus:           adj.Bonus,
		CashAllowance:   adj.CashAllowance,
		InKindAllowance: adj.InKindAllowance,
		Advances:        adj.Advances,
		Garnishments:    adj.Garnishments,
	}
}

func mapToSummary(run PayrollRun) RunSummaryResponse {
	return RunSummaryResponse{
		ID:             run.ID.String(),
		Year:           run.Year,
		Month:          run.Month,
		Status:         run.Status,
		ProcessedCount: run.ProcessedCount,
		SucceededCount: run.SucceededCount,
		FailedCount:    run.FailedCount,
		CreatedAt:      run.CreatedAt.Format(time.RFC3339),
	}
}

func mapToItemResponse(item PayrollRunItem) RunItemResponse {
	return RunItemResponse{
		ID:                   item.ID.String(),
		EmployeeID:           item.EmployeeID.String(),
		BaseSalary:           item.BaseSalary,
		OvertimePay:          item.OvertimePay,
		Bonus:                item.Bonus,
		CashAllowance:        item.CashAllowance,
		InKindAllowance:      item.InKindAllowance,
		GrossSalary:          item.GrossSalary,
		ContributionBase:     item.ContributionBase,
		EmployeeContribution: item.EmployeeContribution,
		EmployeeUnemployment: item.EmployeeUnemployment,
		IncomeTaxBase:        item.IncomeTaxBase,
		IncomeTax:            item.IncomeTax,
		StampTax:             item.StampTax,
		Advances:             item.Advances,
		Garnishments:         item.Garnishments,
		TotalDeductions:      item.TotalDeductions,
		NetSalary:            item.NetSalary,
		EmployerContribution: item.EmployerContribution,
		EmployerUnemployment: item.EmployerUnemployment,
		AccidentInsurance:    item.AccidentInsurance,
		TotalEmployerCost:    item.TotalEmployerCost,
		Warnings:             item.WarningList(),
	}
}
