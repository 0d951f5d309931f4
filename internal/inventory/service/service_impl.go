package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	inventorydomain "github.com/smallbiznis/hotelpms/internal/inventory/domain"
	"github.com/smallbiznis/hotelpms/pkg/db"
	"github.com/smallbiznis/hotelpms/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  inventorydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  inventorydomain.Repository
}

func NewService(p ServiceParam) inventorydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("inventory.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateItem(ctx context.Context, req inventorydomain.CreateItemRequest) (*inventorydomain.Item, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" {
		return nil, inventorydomain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, inventorydomain.ErrInvalidName
	}
	if req.CurrentStock.IsNegative() || req.ReorderLevel.IsNegative() || req.ReorderQuantity.IsNegative() {
		return nil, inventorydomain.ErrInvalidQuantity
	}
	if req.UnitCost.IsNegative() {
		return nil, inventorydomain.ErrInvalidCost
	}

	var supplier *snowflake.ID
	if raw := strings.TrimSpace(req.PreferredSupplierID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, inventorydomain.ErrInvalidID
		}
		supplier = &id
	}

	now := s.clock.Now()
	item := &inventorydomain.Item{
		ID:                  s.genID.Generate(),
		SKU:                 sku,
		Name:                name,
		Kind:                req.Kind,
		Unit:                strings.TrimSpace(req.Unit),
		Classifier:          strings.TrimSpace(req.Classifier),
		CurrentStock:        req.CurrentStock,
		ReorderLevel:        req.ReorderLevel,
		ReorderQuantity:     req.ReorderQuantity,
		UnitCost:            req.UnitCost,
		PreferredSupplierID: supplier,
		ExpiryDate:          req.ExpiryDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if _, err := inventorydomain.AsReorderable(*item); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, inventorydomain.ErrDuplicateSKU
		}
		return nil, err
	}

	s.log.Info("inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.String("kind", string(item.Kind)),
	)
	return item, nil
}

func (s *Service) ListItems(ctx context.Context, kind inventorydomain.ItemKind) ([]inventorydomain.Reorderable, error) {
	items, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]inventorydomain.Reorderable, 0, len(items))
	for _, item := range items {
		typed, err := inventorydomain.AsReorderable(item)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.SKU, err)
		}
		out = append(out, typed)
	}
	return out, nil
}

func (s *Service) PlanReorders(ctx context.Context) (inventorydomain.Plan, error) {
	items, err := s.ListItems(ctx, "")
	if err != nil {
		return inventorydomain.Plan{}, err
	}
	plan := PlanPurchaseOrders(items)

	s.log.Info("reorder plan drafted",
		zap.Int("orders", len(plan.Orders)),
		zap.Int("unassigned", len(plan.Unassigned)),
	)
	return plan, nil
}

// ReceiveGoods books every line of the note against stock in one
// transaction. Any rejected line leaves stock untouched.
func (s *Service) ReceiveGoods(ctx context.Context, req inventorydomain.ReceiveGoodsRequest) (*inventorydomain.GoodsReceivedNote, error) {
	number := strings.TrimSpace(req.GRNNumber)
	if number == "" || len(req.Lines) == 0 {
		return nil, inventorydomain.ErrEmptyGRN
	}
	for _, line := range req.Lines {
		if strings.TrimSpace(line.SKU) == "" {
			return nil, inventorydomain.ErrInvalidSKU
		}
		if !line.Quantity.IsPositive() {
			return nil, inventorydomain.ErrInvalidQuantity
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return nil, inventorydomain.ErrInvalidCost
		}
	}

	var supplier *snowflake.ID
	if raw := strings.TrimSpace(req.SupplierID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, inventorydomain.ErrInvalidID
		}
		supplier = &id
	}

	now := s.clock.Now()
	grn := &inventorydomain.GoodsReceivedNote{
		ID:         s.genID.Generate(),
		GRNNumber:  number,
		SupplierID: supplier,
		Lines:      req.Lines,
		ReceivedBy: strings.TrimSpace(req.ReceivedBy),
		ReceivedAt: now,
		CreatedAt:  now,
	}

	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindGRNByNumber(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return inventorydomain.ErrDuplicateGRN
		}

		for _, line := range req.Lines {
			item, err := repo.FindBySKUForUpdate(ctx, line.SKU)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, strings.TrimSpace(line.SKU))
			}
			cost := item.UnitCost
			if line.UnitCost != nil {
				cost = *line.UnitCost
			}
			if err := repo.UpdateStock(ctx, item, item.CurrentStock.Add(line.Quantity), cost, now); err != nil {
				return err
			}
		}

		if err := repo.CreateGRN(ctx, grn); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return inventorydomain.ErrDuplicateGRN
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	received := decimal.Zero
	for _, line := range grn.Lines {
		received = received.Add(line.Quantity)
	}
	s.log.Info("goods received",
		zap.String("grn_id", grn.ID.String()),
		zap.String("grn_number", grn.GRNNumber),
		zap.Int("lines", len(grn.Lines)),
		zap.String("quantity", received.String()),
	)
	return grn, nil
}
