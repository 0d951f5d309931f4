package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
)

type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Folio, error)
	Get(ctx context.Context, id string) (*Folio, error)
	PostCharge(ctx context.Context, req PostChargeRequest) (*FolioCharge, error)
	PostExtraService(ctx context.Context, req PostExtraServiceRequest) (*FolioExtraService, error)
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*FolioPayment, error)
	CheckOut(ctx context.Context, id string) (*Folio, error)
}

type OpenRequest struct {
	FolioNumber  string          `json:"folio_number"`
	GuestName    string          `json:"guest_name"`
	RoomNumber   string          `json:"room_number"`
	RoomRate     decimal.Decimal `json:"room_rate"`
	Currency     string          `json:"currency"`
	CheckInDate  time.Time       `json:"check_in_date"`
	CheckOutDate time.Time       `json:"check_out_date"`
}

type PostChargeRequest struct {
	FolioID        string               `json:"folio_id"`
	Date           time.Time            `json:"date"`
	Department     taxdomain.Department `json:"department"`
	Category       string               `json:"category"`
	Description    string               `json:"description"`
	Quantity       decimal.Decimal      `json:"quantity"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	Source         ChargeSource         `json:"source"`
	PostedBy       string               `json:"posted_by"`
}

type PostExtraServiceRequest struct {
	FolioID         string               `json:"folio_id"`
	Date            time.Time            `json:"date"`
	ServiceName     string               `json:"service_name"`
	ServiceCategory string               `json:"service_category"`
	Department      taxdomain.Department `json:"department"`
	Quantity        decimal.Decimal      `json:"quantity"`
	UnitPrice       decimal.Decimal      `json:"unit_price"`
	DiscountAmount  decimal.Decimal      `json:"discount_amount"`
	PostedBy        string               `json:"posted_by"`
}

type RecordPaymentRequest struct {
	FolioID   string          `json:"folio_id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}
