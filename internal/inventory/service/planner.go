package service

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	inventorydomain "github.com/smallbiznis/hotelpms/internal/inventory/domain"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// PlanPurchaseOrders drafts one order per preferred supplier for every item
// at or below its reorder level. Orders are sorted by supplier and lines by
// SKU.
func PlanPurchaseOrders(items []inventorydomain.Reorderable) inventorydomain.Plan {
	plan := inventorydomain.Plan{
		Orders:     []inventorydomain.PurchaseOrderDraft{},
		Unassigned: []inventorydomain.PurchaseOrderLine{},
	}
	bySupplier := make(map[snowflake.ID]*inventorydomain.PurchaseOrderDraft)

	for _, item := range items {
		if item == nil || item.Stock().GreaterThan(item.Level()) || !item.ReorderQty().IsPositive() {
			continue
		}
		line := inventorydomain.PurchaseOrderLine{
			SKU:       item.ItemSKU(),
			Name:      item.ItemName(),
			Kind:      item.Kind(),
			Quantity:  item.ReorderQty(),
			UnitCost:  item.Cost(),
			LineTotal: item.ReorderQty().Mul(item.Cost()),
		}

		supplier := item.SupplierID()
		if supplier == nil || *supplier == 0 {
			plan.Unassigned = append(plan.Unassigned, line)
			continue
		}
		order, ok := bySupplier[*supplier]
		if !ok {
			order = &inventorydomain.PurchaseOrderDraft{SupplierID: *supplier, Total: decimal.Zero}
			bySupplier[*supplier] = order
		}
		order.Lines = append(order.Lines, line)
		order.Total = order.Total.Add(line.LineTotal)
	}

	for _, order := range bySupplier {
		sortLines(order.Lines)
		order.Total = money.Round2(order.Total)
		plan.Orders = append(plan.Orders, *order)
	}
	sort.Slice(plan.Orders, func(i, j int) bool {
		return plan.Orders[i].SupplierID < plan.Orders[j].SupplierID
	})
	sortLines(plan.Unassigned)
	return plan
}

func sortLines(lines []inventorydomain.PurchaseOrderLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].SKU < lines[j].SKU })
}
