// Package domain contains the guest folio models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
)

// FolioStatus represents folio lifecycle states.
type FolioStatus string

const (
	FolioStatusOpen       FolioStatus = "open"
	FolioStatusCheckedOut FolioStatus = "checked-out"
	FolioStatusSettled    FolioStatus = "settled"
)

// ChargeSource records who posted a charge.
type ChargeSource string

const (
	ChargeSourceManual     ChargeSource = "manual"
	ChargeSourcePOS        ChargeSource = "pos"
	ChargeSourceNightAudit ChargeSource = "night-audit"
)

// Folio is a guest's running account during a stay.
type Folio struct {
	ID            snowflake.ID        `gorm:"primaryKey" json:"id"`
	FolioNumber   string              `gorm:"type:text;not null;uniqueIndex" json:"folio_number"`
	GuestName     string              `gorm:"type:text;not null" json:"guest_name"`
	RoomNumber    string              `gorm:"type:text;not null" json:"room_number"`
	RoomRate      decimal.Decimal     `gorm:"type:numeric(18,2);not null" json:"room_rate"`
	Currency      string              `gorm:"type:text;not null" json:"currency"`
	CheckInDate   time.Time           `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate  time.Time           `gorm:"not null;index" json:"check_out_date"`
	Status        FolioStatus         `gorm:"type:text;not null;index" json:"status"`
	Charges       []FolioCharge       `gorm:"foreignKey:FolioID" json:"charges,omitempty"`
	ExtraServices []FolioExtraService `gorm:"foreignKey:FolioID" json:"extra_services,omitempty"`
	Payments      []FolioPayment      `gorm:"foreignKey:FolioID" json:"payments,omitempty"`
	CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
}

func (Folio) TableName() string { return "folios" }

// InHouseOn reports whether the guest occupies the room on the night of date.
func (f Folio) InHouseOn(date time.Time) bool {
	day := DayStart(date)
	return !DayStart(f.CheckInDate).After(day) && DayStart(f.CheckOutDate).After(day)
}

// FolioCharge is a single posting against a folio.
type FolioCharge struct {
	ID             snowflake.ID         `gorm:"primaryKey" json:"id"`
	FolioID        snowflake.ID         `gorm:"not null;index" json:"folio_id"`
	Date           time.Time            `gorm:"not null;index" json:"date"`
	Department     taxdomain.Department `gorm:"type:text;not null" json:"department" validate:"required"`
	Category       string               `gorm:"type:text" json:"category"`
	Description    string               `gorm:"type:text;not null" json:"description" validate:"required"`
	Quantity       decimal.Decimal      `gorm:"type:numeric(18,4);not null" json:"quantity" validate:"gt=0"`
	UnitPrice      decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"unit_price" validate:"gte=0"`
	DiscountAmount decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"discount_amount" validate:"gte=0"`
	Source         ChargeSource         `gorm:"type:text;not null" json:"source"`
	PostedBy       string               `gorm:"type:text" json:"posted_by"`
	PostedAt       time.Time            `gorm:"not null" json:"posted_at"`
	IsVoided       bool                 `gorm:"not null" json:"is_voided"`
	CreatedAt      time.Time            `gorm:"not null" json:"created_at"`
}

func (FolioCharge) TableName() string { return "folio_charges" }

// FolioExtraService is an extra service (spa, laundry, transport) consumed
// during the stay.
type FolioExtraService struct {
	ID              snowflake.ID         `gorm:"primaryKey" json:"id"`
	FolioID         snowflake.ID         `gorm:"not null;index" json:"folio_id"`
	Date            time.Time            `gorm:"not null" json:"date"`
	ServiceName     string               `gorm:"type:text;not null" json:"service_name" validate:"required"`
	ServiceCategory string               `gorm:"type:text" json:"service_category"`
	Department      taxdomain.Department `gorm:"type:text;not null" json:"department" validate:"required"`
	Quantity        decimal.Decimal      `gorm:"type:numeric(18,4);not null" json:"quantity" validate:"gt=0"`
	UnitPrice       decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"unit_price" validate:"gte=0"`
	DiscountAmount  decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"discount_amount" validate:"gte=0"`
	PostedBy        string               `gorm:"type:text" json:"posted_by"`
	PostedAt        time.Time            `gorm:"not null" json:"posted_at"`
	CreatedAt       time.Time            `gorm:"not null" json:"created_at"`
}

func (FolioExtraService) TableName() string { return "folio_extra_services" }

// FolioPayment is money received against a folio.
type FolioPayment struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	FolioID    snowflake.ID    `gorm:"not null;index" json:"folio_id"`
	Method     string          `gorm:"type:text;not null" json:"method"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Reference  string          `gorm:"type:text" json:"reference"`
	ReceivedAt time.Time       `gorm:"not null" json:"received_at"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
}

func (FolioPayment) TableName() string { return "folio_payments" }

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
