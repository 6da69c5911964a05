package paramserrors

import (
	"net/http"

	"go-payrun/internal/shared/apperror"
)

var (
	ErrParametersNotFound = apperror.New(
		apperror.CodeNotFound,
		"year parameters not found for this company and year",
		http.StatusNotFound,
	)
	ErrInvalidClampWindow = apperror.New(
		apperror.CodeInvalidState,
		"contribution base floor must not exceed the ceiling",
		http.StatusUnprocessableEntity,
	)
	ErrEmptyBracketTable = apperror.New(
		apperror.CodeInvalidState,
		"progressive tax bracket table is empty",
		http.StatusUnprocessableEntity,
	)
	ErrBracketTableNotContiguous = apperror.New(
		apperror.CodeInvalidState,
		"tax brackets must be sorted ascending with no gaps or overlaps",
		http.StatusUnprocessableEntity,
	)
	ErrBracketTableNotTerminated = apperror.New(
		apperror.CodeInvalidState,
		"the final tax bracket must be unbounded",
		http.StatusUnprocessableEntity,
	)
)
