package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/hotelpms/internal/clock"
	inventorydomain "github.com/smallbiznis/hotelpms/internal/inventory/domain"
	"github.com/smallbiznis/hotelpms/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var receivedAt = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type inventoryFixture struct {
	svc  inventorydomain.Service
	repo inventorydomain.Repository
	node *snowflake.Node
}

func setupInventoryService(t *testing.T) inventoryFixture {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&inventorydomain.Item{}, &inventorydomain.GoodsReceivedNote{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	repo := repository.NewRepository(db)
	svc := NewService(ServiceParam{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(receivedAt),
		Repo:  repo,
	})
	return inventoryFixture{svc: svc, repo: repo, node: node}
}

func seedItems(t *testing.T, f inventoryFixture) {
	t.Helper()
	ctx := context.Background()
	for _, req := range []inventorydomain.CreateItemRequest{
		{SKU: "rice-5kg", Name: "Rice 5kg", Kind: inventorydomain.ItemKindFood, Unit: "bag", CurrentStock: d("4"), ReorderLevel: d("6"), ReorderQuantity: d("20"), UnitCost: d("1450"), PreferredSupplierID: "11"},
		{SKU: "soap", Name: "Guest soap", Kind: inventorydomain.ItemKindAmenity, Classifier: "deluxe", CurrentStock: d("300"), ReorderLevel: d("100"), ReorderQuantity: d("500"), UnitCost: d("35"), PreferredSupplierID: "12"},
		{SKU: "tile", Name: "Floor tile", Kind: inventorydomain.ItemKindConstructionMaterial, Classifier: "WING-B", CurrentStock: d("0"), ReorderLevel: d("0"), ReorderQuantity: d("40"), UnitCost: d("780")},
	} {
		_, err := f.svc.CreateItem(ctx, req)
		require.NoError(t, err)
	}
}

func TestCreateItem(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()

	item, err := f.svc.CreateItem(ctx, inventorydomain.CreateItemRequest{
		SKU: " kettle ", Name: "Kettle", Kind: inventorydomain.ItemKindGeneralProduct, Classifier: "electrical",
		CurrentStock: d("2"), ReorderLevel: d("1"), ReorderQuantity: d("5"), UnitCost: d("4200"),
	})
	require.NoError(t, err)
	assert.Equal(t, "KETTLE", item.SKU)
	assert.Nil(t, item.PreferredSupplierID)

	stored, err := f.repo.FindBySKU(ctx, "kettle")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, item.ID, stored.ID)

	_, err = f.svc.CreateItem(ctx, inventorydomain.CreateItemRequest{SKU: "KETTLE", Name: "Other", Kind: inventorydomain.ItemKindGeneralProduct})
	assert.ErrorIs(t, err, inventorydomain.ErrDuplicateSKU)
}

func TestCreateItem_Validation(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  inventorydomain.CreateItemRequest
		want error
	}{
		{name: "sku", req: inventorydomain.CreateItemRequest{Name: "x", Kind: inventorydomain.ItemKindFood}, want: inventorydomain.ErrInvalidSKU},
		{name: "name", req: inventorydomain.CreateItemRequest{SKU: "x", Kind: inventorydomain.ItemKindFood}, want: inventorydomain.ErrInvalidName},
		{name: "kind", req: inventorydomain.CreateItemRequest{SKU: "x", Name: "x", Kind: "furniture"}, want: inventorydomain.ErrInvalidKind},
		{name: "stock", req: inventorydomain.CreateItemRequest{SKU: "x", Name: "x", Kind: inventorydomain.ItemKindFood, CurrentStock: d("-1")}, want: inventorydomain.ErrInvalidQuantity},
		{name: "cost", req: inventorydomain.CreateItemRequest{SKU: "x", Name: "x", Kind: inventorydomain.ItemKindFood, UnitCost: d("-0.01")}, want: inventorydomain.ErrInvalidCost},
		{name: "supplier", req: inventorydomain.CreateItemRequest{SKU: "x", Name: "x", Kind: inventorydomain.ItemKindFood, PreferredSupplierID: "abc"}, want: inventorydomain.ErrInvalidID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreateItem(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestListItemsAndPlanReorders(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()
	seedItems(t, f)

	all, err := f.svc.ListItems(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "RICE-5KG", all[0].ItemSKU())
	assert.Equal(t, "TILE", all[2].ItemSKU())
	material, ok := all[2].(inventorydomain.ConstructionMaterial)
	require.True(t, ok)
	assert.Equal(t, "WING-B", material.ProjectCode())

	food, err := f.svc.ListItems(ctx, inventorydomain.ItemKindFood)
	require.NoError(t, err)
	require.Len(t, food, 1)
	_, ok = food[0].(inventorydomain.FoodItem)
	assert.True(t, ok)

	plan, err := f.svc.PlanReorders(ctx)
	require.NoError(t, err)
	require.Len(t, plan.Orders, 1)
	assert.Equal(t, snowflake.ID(11), plan.Orders[0].SupplierID)
	assert.True(t, d("29000").Equal(plan.Orders[0].Total))
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, "TILE", plan.Unassigned[0].SKU)
}

func TestReceiveGoods(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()
	seedItems(t, f)

	newCost := d("1500")
	grn, err := f.svc.ReceiveGoods(ctx, inventorydomain.ReceiveGoodsRequest{
		GRNNumber:  "GRN-0001",
		SupplierID: "11",
		ReceivedBy: "stores",
		Lines: []inventorydomain.GRNLine{
			{SKU: "rice-5kg", Quantity: d("20"), UnitCost: &newCost},
			{SKU: "SOAP", Quantity: d("50")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "GRN-0001", grn.GRNNumber)
	require.NotNil(t, grn.SupplierID)
	assert.Equal(t, snowflake.ID(11), *grn.SupplierID)

	rice, err := f.repo.FindBySKU(ctx, "RICE-5KG")
	require.NoError(t, err)
	assert.True(t, d("24").Equal(rice.CurrentStock))
	assert.True(t, newCost.Equal(rice.UnitCost))
	require.NotNil(t, rice.LastReceivedAt)
	assert.True(t, receivedAt.Equal(*rice.LastReceivedAt))

	soap, err := f.repo.FindBySKU(ctx, "SOAP")
	require.NoError(t, err)
	assert.True(t, d("350").Equal(soap.CurrentStock))
	assert.True(t, d("35").Equal(soap.UnitCost))

	stored, err := f.repo.FindGRNByNumber(ctx, "GRN-0001")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Lines, 2)

	_, err = f.svc.ReceiveGoods(ctx, inventorydomain.ReceiveGoodsRequest{
		GRNNumber: "GRN-0001",
		Lines:     []inventorydomain.GRNLine{{SKU: "SOAP", Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, inventorydomain.ErrDuplicateGRN)
}

func TestReceiveGoods_UnknownSKURollsBack(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()
	seedItems(t, f)

	_, err := f.svc.ReceiveGoods(ctx, inventorydomain.ReceiveGoodsRequest{
		GRNNumber: "GRN-0002",
		Lines: []inventorydomain.GRNLine{
			{SKU: "SOAP", Quantity: d("50")},
			{SKU: "MISSING", Quantity: d("1")},
		},
	})
	assert.ErrorIs(t, err, inventorydomain.ErrItemNotFound)

	soap, err := f.repo.FindBySKU(ctx, "SOAP")
	require.NoError(t, err)
	assert.True(t, d("300").Equal(soap.CurrentStock), soap.CurrentStock.String())

	grn, err := f.repo.FindGRNByNumber(ctx, "GRN-0002")
	require.NoError(t, err)
	assert.Nil(t, grn)
}

func TestReceiveGoods_Validation(t *testing.T) {
	f := setupInventoryService(t)
	ctx := context.Background()
	negative := decimal.NewFromInt(-1)

	cases := []struct {
		name string
		req  inventorydomain.ReceiveGoodsRequest
		want error
	}{
		{name: "no lines", req: inventorydomain.ReceiveGoodsRequest{GRNNumber: "G1"}, want: inventorydomain.ErrEmptyGRN},
		{name: "no number", req: inventorydomain.ReceiveGoodsRequest{Lines: []inventorydomain.GRNLine{{SKU: "A", Quantity: d("1")}}}, want: inventorydomain.ErrEmptyGRN},
		{name: "zero qty", req: inventorydomain.ReceiveGoodsRequest{GRNNumber: "G1", Lines: []inventorydomain.GRNLine{{SKU: "A", Quantity: d("0")}}}, want: inventorydomain.ErrInvalidQuantity},
		{name: "negative cost", req: inventorydomain.ReceiveGoodsRequest{GRNNumber: "G1", Lines: []inventorydomain.GRNLine{{SKU: "A", Quantity: d("1"), UnitCost: &negative}}}, want: inventorydomain.ErrInvalidCost},
		{name: "blank sku", req: inventorydomain.ReceiveGoodsRequest{GRNNumber: "G1", Lines: []inventorydomain.GRNLine{{Quantity: d("1")}}}, want: inventorydomain.ErrInvalidSKU},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.ReceiveGoods(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFoodItem_Expired(t *testing.T) {
	expiry := receivedAt.Add(24 * time.Hour)
	food := inventorydomain.FoodItem{Item: inventorydomain.Item{ExpiryDate: &expiry}}
	assert.False(t, food.Expired(receivedAt))
	assert.True(t, food.Expired(expiry))
	assert.True(t, food.NeedsReorder())
}
