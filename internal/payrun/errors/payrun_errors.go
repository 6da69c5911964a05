package payrunerrors

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
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll period, expected year >= 2000 and month 1-12",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeFilter = apperror.New(
		apperror.CodeInvalidInput,
		"employee filter contains an invalid id",
		http.StatusBadRequest,
	)
	ErrRunExists = apperror.New(
		apperror.CodeConflict,
		"a payroll run already exists for this period",
		http.StatusConflict,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrNonPositiveSalary = apperror.New(
		apperror.CodeInvalidInput,
		"base salary must be greater than zero",
		http.StatusBadRequest,
	)
	ErrRunNotCalculated = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has not been calculated",
		http.StatusBadRequest,
	)
)
