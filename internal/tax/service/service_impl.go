package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serviceParams struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  taxdomain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  taxdomain.Repository
	now   func() time.Time
}

func NewService(p serviceParams) taxdomain.Service {
	return &Service{
		log:   p.Log.Named("tax.service"),
		genID: p.GenID,
		repo:  p.Repo,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, req taxdomain.ListRequest) ([]taxdomain.TaxConfiguration, error) {
	return s.repo.ListTaxes(ctx, taxdomain.ListRequest{
		Type:     taxdomain.TaxType(strings.TrimSpace(string(req.Type))),
		IsActive: req.IsActive,
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	})
}

func (s *Service) Create(ctx context.Context, req taxdomain.CreateRequest) (*taxdomain.TaxConfiguration, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now()
	record := &taxdomain.TaxConfiguration{
		ID:                     s.genID.Generate(),
		Name:                   strings.TrimSpace(req.Name),
		Type:                   normalizeTaxType(req.Type),
		Rate:                   req.Rate,
		IsInclusive:            req.IsInclusive,
		IsActive:               isActive,
		IsCompoundTax:          req.IsCompoundTax,
		AppliesTo:              req.AppliesTo,
		CalculationOrder:       req.CalculationOrder,
		TaxableOnServiceCharge: req.TaxableOnServiceCharge,
		ExemptCategories:       req.ExemptCategories,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTax(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info("tax configuration created",
		zap.String("tax_config_id", record.ID.String()),
		zap.String("type", string(record.Type)),
		zap.String("rate", record.Rate.String()),
	)
	return record, nil
}

func (s *Service) Update(ctx context.Context, req taxdomain.UpdateRequest) (*taxdomain.TaxConfiguration, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Rate != nil {
		item.Rate = *req.Rate
	}
	if req.IsCompoundTax != nil {
		item.IsCompoundTax = *req.IsCompoundTax
	}
	if req.AppliesTo != nil {
		item.AppliesTo = req.AppliesTo
	}
	if req.CalculationOrder != nil {
		item.CalculationOrder = *req.CalculationOrder
	}
	if req.TaxableOnServiceCharge != nil {
		item.TaxableOnServiceCharge = *req.TaxableOnServiceCharge
	}
	if req.ExemptCategories != nil {
		item.ExemptCategories = req.ExemptCategories
	}

	item.UpdatedAt = s.now()
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTax(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) (*taxdomain.TaxConfiguration, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	item.IsActive = false
	item.UpdatedAt = s.now()
	if err := s.repo.UpdateTax(ctx, item); err != nil {
		return nil, err
	}

	s.log.Info("tax configuration deactivated", zap.String("tax_config_id", item.ID.String()))
	return item, nil
}

// SetServiceCharge replaces the active service charge configuration.
func (s *Service) SetServiceCharge(ctx context.Context, req taxdomain.ServiceChargeRequest) (*taxdomain.ServiceChargeConfiguration, error) {
	now := s.now()
	record := &taxdomain.ServiceChargeConfiguration{
		ID:               s.genID.Generate(),
		Name:             strings.TrimSpace(req.Name),
		Rate:             req.Rate,
		IsActive:         true,
		AppliesTo:        req.AppliesTo,
		IsTaxable:        req.IsTaxable,
		ExemptCategories: req.ExemptCategories,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveServiceCharge(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) find(ctx context.Context, rawID string) (*taxdomain.TaxConfiguration, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil {
		return nil, taxdomain.ErrInvalidID
	}
	item, err := s.repo.FindTaxByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, taxdomain.ErrNotFound
	}
	return item, nil
}

func normalizeTaxType(value taxdomain.TaxType) taxdomain.TaxType {
	return taxdomain.TaxType(strings.ToLower(strings.TrimSpace(string(value))))
}
