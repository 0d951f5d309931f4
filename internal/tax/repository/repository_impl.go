package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/smallbiznis/hotelpms/pkg/db/option"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) taxdomain.Repository {
	return &repository{db: db}
}

func (r *repository) ListActiveTaxes(ctx context.Context) ([]taxdomain.TaxConfiguration, error) {
	var items []taxdomain.TaxConfiguration
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("calculation_order ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListTaxes(ctx context.Context, filter taxdomain.ListRequest) ([]taxdomain.TaxConfiguration, error) {
	var items []taxdomain.TaxConfiguration
	stmt := r.db.WithContext(ctx).Model(&taxdomain.TaxConfiguration{})

	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at":        true,
		"calculation_order": true,
		"name":              true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindTaxByID(ctx context.Context, id snowflake.ID) (*taxdomain.TaxConfiguration, error) {
	var item taxdomain.TaxConfiguration
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateTax(ctx context.Context, cfg *taxdomain.TaxConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *repository) UpdateTax(ctx context.Context, cfg *taxdomain.TaxConfiguration) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *repository) GetActiveServiceCharge(ctx context.Context) (*taxdomain.ServiceChargeConfiguration, error) {
	var item taxdomain.ServiceChargeConfiguration
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Order("id DESC").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// SaveServiceCharge deactivates every existing configuration and stores cfg
// as the only active one.
func (r *repository) SaveServiceCharge(ctx context.Context, cfg *taxdomain.ServiceChargeConfiguration) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&taxdomain.ServiceChargeConfiguration{}).
			Where("is_active = ?", true).
			Updates(map[string]any{"is_active": false, "updated_at": cfg.UpdatedAt}).Error; err != nil {
			return err
		}
		return tx.Create(cfg).Error
	})
}
