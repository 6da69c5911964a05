package accrualerrors

import (
	"net/http"

	"go-payrun/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid run id",
		http.StatusBadRequest,
	)
	ErrInvalidAccrualID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid accrual id",
		http.StatusBadRequest,
	)
	ErrInvalidPaymentDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payment date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrAccrualNotFound = apperror.New(
		apperror.CodeNotFound,
		"accrual record not found",
		http.StatusNotFound,
	)
	ErrRunNotAccruable = apperror.New(
		apperror.CodeInvalidState,
		"accruals can only be generated from a calculated run",
		http.StatusBadRequest,
	)
	ErrAlreadyPaid = apperror.New(
		apperror.CodeInvalidState,
		"accrual record is already paid",
		http.StatusConflict,
	)
)
