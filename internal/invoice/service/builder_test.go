package service

import (
	"errors"
	"testing"
	"time"

	foliodomain "github.com/smallbiznis/hotelpms/internal/folio/domain"
	invoicedomain "github.com/smallbiznis/hotelpms/internal/invoice/domain"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RoomCharge(t *testing.T) {
	b := testBuilder(t)
	postedAt := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	line, err := b.FromCharge(foliodomain.FolioCharge{
		ID:          42,
		Date:        postedAt,
		Department:  taxdomain.DepartmentFrontOffice,
		Description: "Room 204 - Deluxe",
		Quantity:    d("1"),
		UnitPrice:   d("18500"),
		PostedBy:    "night-audit",
		PostedAt:    postedAt,
	}, standardRates())
	require.NoError(t, err)

	assert.Equal(t, invoicedomain.ItemTypeRoomCharge, line.ItemType)
	assert.True(t, line.Taxable)
	assert.False(t, line.ServiceChargeApplicable)
	assert.True(t, line.ServiceChargeAmount.IsZero())
	require.Len(t, line.TaxLines, 1)
	assert.True(t, d("2775").Equal(line.TaxLines[0].TaxAmount))
	assert.True(t, d("21275").Equal(line.LineGrandTotal))
	require.NotNil(t, line.SourceID)
	assert.EqualValues(t, 42, *line.SourceID)
	assert.Equal(t, postedAt, line.PostedAt)
	assert.Equal(t, "night-audit", line.PostedBy)
}

func TestBuilder_FNBChargeWithServiceCharge(t *testing.T) {
	b := testBuilder(t)

	line, err := b.FromCharge(foliodomain.FolioCharge{
		Department:  taxdomain.DepartmentFNB,
		Description: "Dinner buffet",
		Quantity:    d("2"),
		UnitPrice:   d("2500"),
	}, standardRates())
	require.NoError(t, err)

	assert.Equal(t, invoicedomain.ItemTypeFNBRestaurant, line.ItemType)
	assert.True(t, line.ServiceChargeApplicable)
	assert.True(t, d("5000").Equal(line.NetAmount))
	assert.True(t, d("500").Equal(line.ServiceChargeAmount))
	require.Len(t, line.TaxLines, 1)
	assert.True(t, d("5500").Equal(line.TaxLines[0].TaxableAmount))
	assert.True(t, d("825").Equal(line.TotalTax))
	assert.True(t, d("6325").Equal(line.LineGrandTotal))
}

func TestBuilder_DiscountReducesNet(t *testing.T) {
	b := testBuilder(t)

	line, err := b.FromManual(invoicedomain.ManualCharge{
		Department:     taxdomain.DepartmentSpa,
		Description:    "Massage",
		Quantity:       d("1"),
		UnitPrice:      d("1000"),
		DiscountAmount: d("100"),
	}, standardRates())
	require.NoError(t, err)

	assert.Equal(t, invoicedomain.ItemTypeMisc, line.ItemType)
	assert.True(t, d("1000").Equal(line.LineTotal))
	assert.True(t, d("900").Equal(line.NetAmount))
	assert.True(t, d("135").Equal(line.TotalTax))
	assert.True(t, d("1035").Equal(line.LineGrandTotal))
}

func TestBuilder_KitchenIsRestaurantWithoutServiceCharge(t *testing.T) {
	line, err := testBuilder(t).FromExtraService(foliodomain.FolioExtraService{
		ServiceName: "Private chef",
		Department:  taxdomain.DepartmentKitchen,
		Quantity:    d("1"),
		UnitPrice:   d("4000"),
	}, standardRates())
	require.NoError(t, err)

	assert.Equal(t, invoicedomain.ItemTypeFNBRestaurant, line.ItemType)
	assert.False(t, line.ServiceChargeApplicable)
	assert.True(t, line.ServiceChargeAmount.IsZero())
}

func TestBuilder_NonTaxableCategories(t *testing.T) {
	cases := []struct {
		description string
		category    string
		want        bool
	}{
		{description: "Advance deposit", want: false},
		{description: "Payment", category: "advance_deposit", want: false},
		{description: "Refund - overcharge", want: false},
		{description: "Minibar", category: "fnb", want: true},
		{description: "Prefunded minibar", category: "fnb", want: true},
		{description: "Refundable key card deposit", want: true},
		{description: "Deposit", category: "Advance Deposit", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTaxable(tc.description, tc.category))
		})
	}

	line, err := testBuilder(t).FromManual(invoicedomain.ManualCharge{
		Department:  taxdomain.DepartmentFrontOffice,
		Description: "Advance Deposit",
		Quantity:    d("1"),
		UnitPrice:   d("10000"),
	}, standardRates())
	require.NoError(t, err)
	assert.Empty(t, line.TaxLines)
	assert.True(t, d("10000").Equal(line.LineGrandTotal))
}

func TestBuilder_RejectsInvalidSourceRecord(t *testing.T) {
	_, err := testBuilder(t).FromCharge(foliodomain.FolioCharge{
		Department: taxdomain.DepartmentFNB,
		Quantity:   d("0"),
		UnitPrice:  d("-5"),
	}, standardRates())
	require.Error(t, err)
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidSourceRecord)

	var srcErr *invoicedomain.SourceRecordError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "folio_charge", srcErr.Source)

	fields := map[string]string{}
	for _, f := range srcErr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, "required", fields["description"])
	assert.Equal(t, "gt", fields["quantity"])
	assert.Equal(t, "gte", fields["unit_price"])
}

func TestBuilder_RejectsDiscountAboveLineTotal(t *testing.T) {
	b := testBuilder(t)
	rates := standardRates()

	_, manualErr := b.FromManual(invoicedomain.ManualCharge{
		Department:     taxdomain.DepartmentFrontOffice,
		Description:    "Late checkout",
		Quantity:       d("1"),
		UnitPrice:      d("100"),
		DiscountAmount: d("500"),
	}, rates)
	_, chargeErr := b.FromCharge(foliodomain.FolioCharge{
		Department:     taxdomain.DepartmentFNB,
		Description:    "Dinner",
		Quantity:       d("2"),
		UnitPrice:      d("50"),
		DiscountAmount: d("100.01"),
	}, rates)
	_, extraErr := b.FromExtraService(foliodomain.FolioExtraService{
		Department:     taxdomain.DepartmentSpa,
		ServiceName:    "Massage",
		Quantity:       d("1"),
		UnitPrice:      d("3000"),
		DiscountAmount: d("3001"),
	}, rates)

	for _, err := range []error{manualErr, chargeErr, extraErr} {
		require.ErrorIs(t, err, invoicedomain.ErrInvalidSourceRecord)
		var srcErr *invoicedomain.SourceRecordError
		require.True(t, errors.As(err, &srcErr))
		require.Len(t, srcErr.Fields, 1)
		assert.Equal(t, "discount_amount", srcErr.Fields[0].Field)
		assert.Equal(t, "must not exceed the line total", srcErr.Fields[0].Message)
	}

	line, err := b.FromManual(invoicedomain.ManualCharge{
		Department:     taxdomain.DepartmentFrontOffice,
		Description:    "Complimentary upgrade",
		Quantity:       d("1"),
		UnitPrice:      d("100"),
		DiscountAmount: d("100"),
	}, rates)
	require.NoError(t, err)
	assert.True(t, line.NetAmount.IsZero())
	assert.True(t, line.LineGrandTotal.IsZero())
}

func TestBuilder_UndatedLineUsesClock(t *testing.T) {
	line, err := testBuilder(t).FromManual(invoicedomain.ManualCharge{
		Department:  taxdomain.DepartmentLaundry,
		Description: "Pressing",
		Quantity:    d("3"),
		UnitPrice:   d("250"),
	}, standardRates())
	require.NoError(t, err)
	assert.Equal(t, builderNow, line.Date)
	assert.Equal(t, builderNow, line.PostedAt)
}

func TestBuilder_RecalculateAfterDiscount(t *testing.T) {
	b := testBuilder(t)
	rates := standardRates()

	line, err := b.FromManual(invoicedomain.ManualCharge{
		Department:  taxdomain.DepartmentFNB,
		Description: "Lunch",
		Quantity:    d("1"),
		UnitPrice:   d("5000"),
	}, rates)
	require.NoError(t, err)

	line.DiscountAmount = d("1000")
	updated := b.Recalculate(line, rates)
	assert.Equal(t, line.ID, updated.ID)
	assert.True(t, d("4000").Equal(updated.NetAmount))
	assert.True(t, d("400").Equal(updated.ServiceChargeAmount))
	assert.True(t, d("660").Equal(updated.TotalTax))
	assert.True(t, d("5060").Equal(updated.LineGrandTotal))
}

func TestBuilder_DepartmentScopeOverride(t *testing.T) {
	rates := standardRates()
	rates.Taxes[0].AppliesTo = []taxdomain.Department{taxdomain.DepartmentFrontOffice}
	charge := invoicedomain.ManualCharge{
		Department:  taxdomain.DepartmentSpa,
		Description: "Sauna",
		Quantity:    d("1"),
		UnitPrice:   d("100"),
	}

	scoped, err := testBuilder(t).WithDepartmentScope(true).FromManual(charge, rates)
	require.NoError(t, err)
	assert.Empty(t, scoped.TaxLines)

	unscoped, err := testBuilder(t).WithDepartmentScope(false).FromManual(charge, rates)
	require.NoError(t, err)
	assert.Len(t, unscoped.TaxLines, 1)
}
