package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("folio_not_found")
	ErrInvalidGuestName  = errors.New("invalid_guest_name")
	ErrInvalidRoomNumber = errors.New("invalid_room_number")
	ErrInvalidStayDates  = errors.New("invalid_stay_dates")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrFolioClosed       = errors.New("folio_closed")
	ErrDuplicateFolioNo  = errors.New("duplicate_folio_number")
)
