package params

import (
	"context"
	"errors"

	paramserrors "go-payrun/internal/params/errors"
	"go-payrun/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=params_repo.go -destination=mock/params_repo_mock.go -package=mock
type Repository interface {
	FindByCompanyAndYear(ctx context.Context, companyID string, year int) (*YearParameters, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCompanyAndYear(ctx context.Context, companyID string, year int) (*YearParameters, error) {
	var p YearParameters
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Brackets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&p, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, paramserrors.ErrParametersNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
