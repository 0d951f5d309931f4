package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	"github.com/smallbiznis/hotelpms/internal/folio/repository"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  foliodomain.Service
	repo foliodomain.Repository
	clk  *clock.FakeClock
}

func setup(t *testing.T) fixture {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&foliodomain.Folio{},
		&foliodomain.FolioCharge{},
		&foliodomain.FolioExtraService{},
		&foliodomain.FolioPayment{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	repo := repository.NewRepository(db)

	svc := NewService(ServiceParam{
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clk,
		Config: config.Config{Currency: "LKR"},
		Repo:   repo,
	})
	return fixture{svc: svc, repo: repo, clk: clk}
}

func openStay(t *testing.T, f fixture, room string, in, out time.Time) *foliodomain.Folio {
	t.Helper()
	folio, err := f.svc.Open(context.Background(), foliodomain.OpenRequest{
		GuestName:    "Guest " + room,
		RoomNumber:   room,
		RoomRate:     decimal.NewFromInt(18500),
		CheckInDate:  in,
		CheckOutDate: out,
	})
	require.NoError(t, err)
	return folio
}

func TestOpenValidatesInput(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := f.svc.Open(ctx, foliodomain.OpenRequest{RoomNumber: "101", CheckInDate: day, CheckOutDate: day.AddDate(0, 0, 1)})
	assert.ErrorIs(t, err, foliodomain.ErrInvalidGuestName)

	_, err = f.svc.Open(ctx, foliodomain.OpenRequest{GuestName: "A", RoomNumber: "101", CheckInDate: day, CheckOutDate: day})
	assert.ErrorIs(t, err, foliodomain.ErrInvalidStayDates)

	folio := openStay(t, f, "101", day, day.AddDate(0, 0, 2))
	assert.Equal(t, "LKR", folio.Currency)
	assert.Equal(t, foliodomain.FolioStatusOpen, folio.Status)

	_, err = f.svc.Open(ctx, foliodomain.OpenRequest{
		FolioNumber:  folio.FolioNumber,
		GuestName:    "B",
		RoomNumber:   "102",
		CheckInDate:  day,
		CheckOutDate: day.AddDate(0, 0, 1),
	})
	assert.ErrorIs(t, err, foliodomain.ErrDuplicateFolioNo)
}

func TestPostingsAndPreload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	folio := openStay(t, f, "201", day, day.AddDate(0, 0, 3))

	_, err := f.svc.PostCharge(ctx, foliodomain.PostChargeRequest{
		FolioID:     folio.ID.String(),
		Department:  taxdomain.DepartmentFNB,
		Description: "Dinner",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(5000),
		Source:      foliodomain.ChargeSourcePOS,
	})
	require.NoError(t, err)

	_, err = f.svc.PostExtraService(ctx, foliodomain.PostExtraServiceRequest{
		FolioID:     folio.ID.String(),
		ServiceName: "Massage",
		Department:  taxdomain.DepartmentSpa,
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(3000),
	})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, foliodomain.RecordPaymentRequest{FolioID: folio.ID.String(), Method: "Card", Amount: decimal.NewFromInt(2000)})
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, foliodomain.RecordPaymentRequest{FolioID: folio.ID.String(), Amount: decimal.Zero})
	assert.ErrorIs(t, err, foliodomain.ErrInvalidAmount)

	loaded, err := f.svc.Get(ctx, folio.ID.String())
	require.NoError(t, err)
	require.Len(t, loaded.Charges, 1)
	require.Len(t, loaded.ExtraServices, 1)
	require.Len(t, loaded.Payments, 1)
	assert.Equal(t, "card", loaded.Payments[0].Method)
	assert.True(t, decimal.NewFromInt(5000).Equal(loaded.Charges[0].UnitPrice))
}

func TestPostingRejectsRecordsThatCannotBeInvoiced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	folio := openStay(t, f, "205", day, day.AddDate(0, 0, 2))

	_, err := f.svc.PostCharge(ctx, foliodomain.PostChargeRequest{
		FolioID:    folio.ID.String(),
		Department: taxdomain.DepartmentFNB,
		Quantity:   decimal.Zero,
		UnitPrice:  decimal.NewFromInt(-5),
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidSourceRecord)
	var srcErr *invoicedomain.SourceRecordError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "folio_charge", srcErr.Source)
	rules := map[string]string{}
	for _, field := range srcErr.Fields {
		rules[field.Field] = field.Rule
	}
	assert.Equal(t, "required", rules["description"])
	assert.Equal(t, "gt", rules["quantity"])
	assert.Equal(t, "gte", rules["unit_price"])

	_, err = f.svc.PostCharge(ctx, foliodomain.PostChargeRequest{
		FolioID:        folio.ID.String(),
		Department:     taxdomain.DepartmentFNB,
		Description:    "Dinner",
		Quantity:       decimal.NewFromInt(1),
		UnitPrice:      decimal.NewFromInt(100),
		DiscountAmount: decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidSourceRecord)

	_, err = f.svc.PostExtraService(ctx, foliodomain.PostExtraServiceRequest{
		FolioID:    folio.ID.String(),
		Department: taxdomain.DepartmentSpa,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.NewFromInt(3000),
	})
	require.ErrorIs(t, err, invoicedomain.ErrInvalidSourceRecord)
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "folio_extra_service", srcErr.Source)

	loaded, err := f.svc.Get(ctx, folio.ID.String())
	require.NoError(t, err)
	assert.Empty(t, loaded.Charges, "rejected postings are not stored")
	assert.Empty(t, loaded.ExtraServices)
}

func TestCheckOutClosesFolio(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	folio := openStay(t, f, "301", day, day.AddDate(0, 0, 1))

	out, err := f.svc.CheckOut(ctx, folio.ID.String())
	require.NoError(t, err)
	assert.Equal(t, foliodomain.FolioStatusCheckedOut, out.Status)

	_, err = f.svc.PostCharge(ctx, foliodomain.PostChargeRequest{FolioID: folio.ID.String(), Description: "late", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, foliodomain.ErrFolioClosed)

	_, err = f.svc.Get(ctx, "999")
	assert.ErrorIs(t, err, foliodomain.ErrNotFound)
}

func TestRepositoryStayQueries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	staying := openStay(t, f, "401", day.AddDate(0, 0, -1), day.AddDate(0, 0, 2))
	departing := openStay(t, f, "402", day.AddDate(0, 0, -2), day)
	openStay(t, f, "403", day.AddDate(0, 0, 1), day.AddDate(0, 0, 3))

	inHouse, err := f.repo.ListInHouse(ctx, day)
	require.NoError(t, err)
	require.Len(t, inHouse, 1)
	assert.Equal(t, staying.ID, inHouse[0].ID)
	assert.True(t, inHouse[0].InHouseOn(day))

	departures, err := f.repo.ListDepartures(ctx, day)
	require.NoError(t, err)
	require.Len(t, departures, 1)
	assert.Equal(t, departing.ID, departures[0].ID)

	has, err := f.repo.HasChargeForDate(ctx, staying.ID, foliodomain.ChargeSourceNightAudit, day)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, f.repo.AddCharge(ctx, &foliodomain.FolioCharge{
		ID:          999,
		FolioID:     staying.ID,
		Date:        day.Add(23 * time.Hour),
		Department:  taxdomain.DepartmentFrontOffice,
		Description: "Room 401",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   staying.RoomRate,
		Source:      foliodomain.ChargeSourceNightAudit,
		PostedAt:    f.clk.Now(),
		CreatedAt:   f.clk.Now(),
	}))

	has, err = f.repo.HasChargeForDate(ctx, staying.ID, foliodomain.ChargeSourceNightAudit, day)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.repo.HasChargeForDate(ctx, staying.ID, foliodomain.ChargeSourceNightAudit, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, has)
}
