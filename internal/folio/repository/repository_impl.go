package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	"github.com/smallbiznis/hotelpms/pkg/db/option"
	"github.com/smallbiznis/hotelpms/pkg/repository"
	"gorm.io/gorm"
)

type repo struct {
	db      *gorm.DB
	folios  repository.Repository[foliodomain.Folio]
	charges repository.Repository[foliodomain.FolioCharge]
}

func NewRepository(db *gorm.DB) foliodomain.Repository {
	return &repo{
		db:      db,
		folios:  repository.ProvideStore[foliodomain.Folio](db),
		charges: repository.ProvideStore[foliodomain.FolioCharge](db),
	}
}

func (r *repo) WithTx(tx *gorm.DB) foliodomain.Repository {
	return NewRepository(tx)
}

func (r *repo) Create(ctx context.Context, folio *foliodomain.Folio) error {
	return r.folios.Create(ctx, folio)
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*foliodomain.Folio, error) {
	var folio foliodomain.Folio
	err := r.db.WithContext(ctx).
		Preload("Charges", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC").Order("id ASC") }).
		Preload("ExtraServices", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC").Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("received_at ASC").Order("id ASC") }).
		Where("id = ?", id).
		First(&folio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &folio, nil
}

func (r *repo) ListInHouse(ctx context.Context, date time.Time) ([]foliodomain.Folio, error) {
	day := foliodomain.DayStart(date)
	items, err := r.folios.Find(ctx, &foliodomain.Folio{Status: foliodomain.FolioStatusOpen},
		option.ApplyOperator(option.Condition{Field: "check_in_date", Operator: option.LT, Value: day.AddDate(0, 0, 1)}),
		option.ApplyOperator(option.Condition{Field: "check_out_date", Operator: option.GTE, Value: day.AddDate(0, 0, 1)}),
		option.WithSortBy(option.QuerySortBy{SortBy: "room_number", OrderBy: "asc", Allow: map[string]bool{"room_number": true}}),
	)
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (r *repo) ListDepartures(ctx context.Context, date time.Time) ([]foliodomain.Folio, error) {
	day := foliodomain.DayStart(date)
	var items []foliodomain.Folio
	err := r.db.WithContext(ctx).
		Where("check_out_date >= ? AND check_out_date < ?", day, day.AddDate(0, 0, 1)).
		Where("status IN ?", []foliodomain.FolioStatus{foliodomain.FolioStatusOpen, foliodomain.FolioStatusCheckedOut}).
		Order("room_number ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) AddCharge(ctx context.Context, charge *foliodomain.FolioCharge) error {
	return r.charges.Create(ctx, charge)
}

func (r *repo) AddExtraService(ctx context.Context, svc *foliodomain.FolioExtraService) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *repo) AddPayment(ctx context.Context, payment *foliodomain.FolioPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repo) HasChargeForDate(ctx context.Context, folioID snowflake.ID, source foliodomain.ChargeSource, date time.Time) (bool, error) {
	day := foliodomain.DayStart(date)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&foliodomain.FolioCharge{}).
		Where("folio_id = ? AND source = ? AND is_voided = ?", folioID, source, false).
		Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) UpdateStatus(ctx context.Context, id snowflake.ID, status foliodomain.FolioStatus) error {
	return r.folios.Update(ctx, id, map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func deref(items []*foliodomain.Folio) []foliodomain.Folio {
	out := make([]foliodomain.Folio, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
