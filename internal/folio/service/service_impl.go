package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hotelpms/internal/clock"
	"github.com/smallbiznis/hotelpms/internal/config"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	"github.com/smallbiznis/hotelpms/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
	Repo   foliodomain.Repository
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	currency string
	repo     foliodomain.Repository
	sources  *invoicedomain.SourceValidator
}

func NewService(p ServiceParam) foliodomain.Service {
	return &Service{
		log:      p.Log.Named("folio.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		currency: p.Config.Currency,
		repo:     p.Repo,
		sources:  invoicedomain.NewSourceValidator(),
	}
}

func (s *Service) Open(ctx context.Context, req foliodomain.OpenRequest) (*foliodomain.Folio, error) {
	guest := strings.TrimSpace(req.GuestName)
	if guest == "" {
		return nil, foliodomain.ErrInvalidGuestName
	}
	room := strings.TrimSpace(req.RoomNumber)
	if room == "" {
		return nil, foliodomain.ErrInvalidRoomNumber
	}
	checkIn := foliodomain.DayStart(req.CheckInDate)
	checkOut := foliodomain.DayStart(req.CheckOutDate)
	if req.CheckInDate.IsZero() || !checkOut.After(checkIn) {
		return nil, foliodomain.ErrInvalidStayDates
	}
	if req.RoomRate.IsNegative() {
		return nil, foliodomain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.currency
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	number := strings.TrimSpace(req.FolioNumber)
	if number == "" {
		number = "F-" + id.String()
	}

	folio := &foliodomain.Folio{
		ID:           id,
		FolioNumber:  number,
		GuestName:    guest,
		RoomNumber:   room,
		RoomRate:     req.RoomRate,
		Currency:     currency,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Status:       foliodomain.FolioStatusOpen,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, folio); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, foliodomain.ErrDuplicateFolioNo
		}
		return nil, err
	}

	s.log.Info("folio opened",
		zap.String("folio_id", folio.ID.String()),
		zap.String("folio_number", folio.FolioNumber),
		zap.String("room_number", folio.RoomNumber),
	)
	return folio, nil
}

func (s *Service) Get(ctx context.Context, id string) (*foliodomain.Folio, error) {
	folioID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, foliodomain.ErrInvalidID
	}
	folio, err := s.repo.FindByID(ctx, folioID)
	if err != nil {
		return nil, err
	}
	if folio == nil {
		return nil, foliodomain.ErrNotFound
	}
	return folio, nil
}

func (s *Service) PostCharge(ctx context.Context, req foliodomain.PostChargeRequest) (*foliodomain.FolioCharge, error) {
	folio, err := s.openFolio(ctx, req.FolioID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	source := req.Source
	if source == "" {
		source = foliodomain.ChargeSourceManual
	}

	charge := &foliodomain.FolioCharge{
		ID:             s.genID.Generate(),
		FolioID:        folio.ID,
		Date:           date.UTC(),
		Department:     req.Department,
		Category:       strings.TrimSpace(req.Category),
		Description:    strings.TrimSpace(req.Description),
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		DiscountAmount: req.DiscountAmount,
		Source:         source,
		PostedBy:       strings.TrimSpace(req.PostedBy),
		PostedAt:       now,
		CreatedAt:      now,
	}
	if err := s.sources.Check("folio_charge", *charge); err != nil {
		return nil, err
	}
	if err := s.repo.AddCharge(ctx, charge); err != nil {
		return nil, err
	}

	s.log.Info("folio charge posted",
		zap.String("folio_id", folio.ID.String()),
		zap.String("charge_id", charge.ID.String()),
		zap.String("department", string(charge.Department)),
	)
	return charge, nil
}

func (s *Service) PostExtraService(ctx context.Context, req foliodomain.PostExtraServiceRequest) (*foliodomain.FolioExtraService, error) {
	folio, err := s.openFolio(ctx, req.FolioID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	entry := &foliodomain.FolioExtraService{
		ID:              s.genID.Generate(),
		FolioID:         folio.ID,
		Date:            date.UTC(),
		ServiceName:     strings.TrimSpace(req.ServiceName),
		ServiceCategory: strings.TrimSpace(req.ServiceCategory),
		Department:      req.Department,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountAmount:  req.DiscountAmount,
		PostedBy:        strings.TrimSpace(req.PostedBy),
		PostedAt:        now,
		CreatedAt:       now,
	}
	if err := s.sources.Check("folio_extra_service", *entry); err != nil {
		return nil, err
	}
	if err := s.repo.AddExtraService(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) RecordPayment(ctx context.Context, req foliodomain.RecordPaymentRequest) (*foliodomain.FolioPayment, error) {
	if !req.Amount.IsPositive() {
		return nil, foliodomain.ErrInvalidAmount
	}
	folio, err := s.Get(ctx, req.FolioID)
	if err != nil {
		return nil, err
	}
	if folio.Status == foliodomain.FolioStatusSettled {
		return nil, foliodomain.ErrFolioClosed
	}

	now := s.clock.Now()
	payment := &foliodomain.FolioPayment{
		ID:         s.genID.Generate(),
		FolioID:    folio.ID,
		Method:     strings.ToLower(strings.TrimSpace(req.Method)),
		Amount:     req.Amount,
		Reference:  strings.TrimSpace(req.Reference),
		ReceivedAt: now,
		CreatedAt:  now,
	}
	if err := s.repo.AddPayment(ctx, payment); err != nil {
		return nil, err
	}

	s.log.Info("folio payment recorded",
		zap.String("folio_id", folio.ID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

func (s *Service) CheckOut(ctx context.Context, id string) (*foliodomain.Folio, error) {
	folio, err := s.openFolio(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, folio.ID, foliodomain.FolioStatusCheckedOut); err != nil {
		return nil, err
	}
	folio.Status = foliodomain.FolioStatusCheckedOut

	s.log.Info("folio checked out", zap.String("folio_id", folio.ID.String()))
	return folio, nil
}

func (s *Service) openFolio(ctx context.Context, id string) (*foliodomain.Folio, error) {
	folio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if folio.Status != foliodomain.FolioStatusOpen {
		return nil, foliodomain.ErrFolioClosed
	}
	return folio, nil
}
