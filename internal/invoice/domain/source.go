package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// SourceValidator checks the records invoice lines are built from. Folio
// postings run through the same rules so nothing is stored that cannot be
// invoiced later.
type SourceValidator struct {
	validate *validator.Validate
}

func NewSourceValidator() *SourceValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidation(discountWithinLine,
		ManualCharge{}, foliodomain.FolioCharge{}, foliodomain.FolioExtraService{})
	return &SourceValidator{validate: v}
}

// Check validates record and reports every rejected field as a
// SourceRecordError tagged with source.
func (s *SourceValidator) Check(source string, record any) error {
	err := s.validate.Struct(record)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return &SourceRecordError{Source: source, Fields: fields}
}

// discountWithinLine rejects a discount larger than quantity x unit price.
func discountWithinLine(sl validator.StructLevel) {
	var quantity, unitPrice, discount decimal.Decimal
	switch r := sl.Current().Interface().(type) {
	case ManualCharge:
		quantity, unitPrice, discount = r.Quantity, r.UnitPrice, r.DiscountAmount
	case foliodomain.FolioCharge:
		quantity, unitPrice, discount = r.Quantity, r.UnitPrice, r.DiscountAmount
	case foliodomain.FolioExtraService:
		quantity, unitPrice, discount = r.Quantity, r.UnitPrice, r.DiscountAmount
	default:
		return
	}
	if money.Round2(discount).GreaterThan(money.Round2(quantity.Mul(unitPrice))) {
		sl.ReportError(discount, "discount_amount", "DiscountAmount", "ltetotal", "")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be less than " + fe.Param()
	case "ltetotal":
		return "must not exceed the line total"
	default:
		return "failed " + fe.Tag()
	}
}
