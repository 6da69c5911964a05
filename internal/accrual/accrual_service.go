package accrual

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	accrualerrors "go-payrun/internal/accrual/errors"
	"go-payrun/internal/payrun"
	"go-payrun/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=accrual_service.go -destination=mock/accrual_service_mock.go -package=mock
type Service interface {
	GenerateForRun(ctx context.Context, companyID, runID string) (GenerateAccrualsResponse, error)
	GetAll(ctx context.Context, companyID string) ([]AccrualResponse, error)
	RecordPayment(ctx context.Context, companyID, accrualID string, req RecordPaymentRequest) (PaymentResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	runRepo payrun.Repository
}

func NewService(db *sql.DB, repo Repository, runRepo payrun.Repository) Service {
	return &service{db: db, repo: repo, runRepo: runRepo}
}

// Generator adapts the accrual service to the run orchestrator, which
// only needs warnings back from a post-run generation pass.
type Generator struct {
	svc Service
}

func NewGenerator(svc Service) *Generator {
	return &Generator{svc: svc}
}

func (g *Generator) GenerateForRun(ctx context.Context, companyID, runID string) ([]string, error) {
	resp, err := g.svc.GenerateForRun(ctx, companyID, runID)
	return resp.Warnings, err
}

// GenerateForRun creates one ACCRUED record per calculated item of the
// run. It is safe to call twice: existing records are skipped, and the
// unique index catches the race where two calls interleave. Partial
// progress is therefore recoverable by calling again.
func (s *service) GenerateForRun(ctx context.Context, companyID, runID string) (GenerateAccrualsResponse, error) {
	log := contextutil.GetLogger(ctx, zap.L()).Named("accrual.service")

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return GenerateAccrualsResponse{}, accrualerrors.ErrInvalidCompanyID
	}
	runUUID, err := uuid.Parse(runID)
	if err != nil {
		return GenerateAccrualsResponse{}, accrualerrors.ErrInvalidRunID
	}

	run, err := s.runRepo.FindByIDAndCompany(ctx, companyID, runID)
	if err != nil {
		return GenerateAccrualsResponse{}, err
	}
	if run.Status != payrun.StatusCalculated && run.Status != payrun.StatusAccrued {
		return GenerateAccrualsResponse{}, accrualerrors.ErrRunNotAccruable
	}

	items, err := s.runRepo.FindItemsByRun(ctx, companyID, runID)
	if err != nil {
		return GenerateAccrualsResponse{}, err
	}

	resp := GenerateAccrualsResponse{RunID: runID}
	for _, item := range items {
		exists, err := s.repo.ExistsForRunAndEmployee(ctx, companyID, runID, item.EmployeeID.String())
		if err != nil {
			return resp, err
		}
		if exists {
			resp.SkippedCount++
			resp.Warnings = append(resp.Warnings, fmt.Sprintf(
				"accrual already exists for employee %s, skipped", item.EmployeeID,
			))
			continue
		}

		rec := &AccrualRecord{
			ID:          uuid.New(),
			RunID:       runUUID,
			CompanyID:   companyUUID,
			EmployeeID:  item.EmployeeID,
			Status:      StatusAccrued,
			AccrualDate: run.PeriodEnd,
			NetAmount:   item.NetSalary,
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			if isUniqueViolation(err) {
				resp.SkippedCount++
				resp.Warnings = append(resp.Warnings, fmt.Sprintf(
					"accrual already exists for employee %s, skipped", item.EmployeeID,
				))
				continue
			}
			return resp, err
		}
		resp.CreatedCount++
	}

	if run.Status == payrun.StatusCalculated {
		if err := s.runRepo.UpdateStatus(ctx, companyID, runID, payrun.StatusAccrued); err != nil {
			return resp, err
		}
	}

	log.Info("accruals generated",
		zap.String("run_id", runID),
		zap.Int("created", resp.CreatedCount),
		zap.Int("skipped", resp.SkippedCount),
	)
	return resp, nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]AccrualResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, accrualerrors.ErrInvalidCompanyID
	}

	rows, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	resp := make([]AccrualResponse, len(rows))
	for i, rec := range rows {
		resp[i] = mapToResponse(rec)
	}
	return resp, nil
}

// RecordPayment moves one accrual ACCRUED -> PAID and books the payment
// transaction in the same database transaction. There is no way back:
// correcting a wrong payment means a new compensating entry.
func (s *service) RecordPayment(
	ctx context.Context,
	companyID, accrualID string,
	req RecordPaymentRequest,
) (PaymentResponse, error) {
	log := contextutil.GetLogger(ctx, zap.L()).Named("accrual.service")

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PaymentResponse{}, accrualerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(accrualID); err != nil {
		return PaymentResponse{}, accrualerrors.ErrInvalidAccrualID
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return PaymentResponse{}, accrualerrors.ErrInvalidPaymentDate
	}

	rec, err := s.repo.FindByIDAndCompany(ctx, companyID, accrualID)
	if err != nil {
		return PaymentResponse{}, err
	}
	if rec.Status == StatusPaid {
		return PaymentResponse{}, accrualerrors.ErrAlreadyPaid
	}

	now := time.Now().UTC()
	rec.Status = StatusPaid
	rec.PaidAt = &now

	payment := &PaymentTransaction{
		ID:          uuid.New(),
		AccrualID:   rec.ID,
		CompanyID:   companyUUID,
		AccountRef:  req.AccountRef,
		PaymentDate: paymentDate,
		Amount:      rec.NetAmount,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Update(ctx, rec); err != nil {
		return PaymentResponse{}, err
	}
	if err := qtx.CreatePayment(ctx, payment); err != nil {
		return PaymentResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return PaymentResponse{}, err
	}

	log.Info("accrual paid",
		zap.String("accrual_id", accrualID),
		zap.String("amount", rec.NetAmount.String()),
	)

	return PaymentResponse{
		ID:          payment.ID.String(),
		AccrualID:   rec.ID.String(),
		AccountRef:  payment.AccountRef,
		PaymentDate: payment.PaymentDate.Format("2006-01-02"),
		Amount:      payment.Amount,
		Status:      rec.Status,
	}, nil
}

func mapToResponse(rec AccrualRecord) AccrualResponse {
	resp := AccrualResponse{
		ID:          rec.ID.String(),
		RunID:       rec.RunID.String(),
		EmployeeID:  rec.EmployeeID.String(),
		Status:      rec.Status,
		AccrualDate: rec.AccrualDate.Format("2006-01-02"),
		NetAmount:   rec.NetAmount,
	}
	if rec.PaidAt != nil {
		paidAt := rec.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}

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
