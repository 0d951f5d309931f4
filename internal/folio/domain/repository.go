package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, folio *Folio) error
	// FindByID loads the folio with its charges, extra services and payments.
	FindByID(ctx context.Context, id snowflake.ID) (*Folio, error)
	// ListInHouse returns open folios occupying a room on the night of date.
	ListInHouse(ctx context.Context, date time.Time) ([]Folio, error)
	// ListDepartures returns folios checking out on date.
	ListDepartures(ctx context.Context, date time.Time) ([]Folio, error)
	AddCharge(ctx context.Context, charge *FolioCharge) error
	AddExtraService(ctx context.Context, svc *FolioExtraService) error
	AddPayment(ctx context.Context, payment *FolioPayment) error
	HasChargeForDate(ctx context.Context, folioID snowflake.ID, source ChargeSource, date time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status FolioStatus) error
}
