package service

import (
	"sort"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/hotelpms/internal/tax/domain"
	"github.com/smallbiznis/hotelpms/pkg/money"
)

// Engine applies tax and service charge configurations to invoice lines.
// It is shared by ad hoc invoicing and the night audit; the only difference
// between the two paths is whether department scoping is enforced.
type Engine struct {
	departmentScope bool
}

type EngineOption func(*Engine)

// WithDepartmentScope skips tax configurations whose AppliesTo list
// excludes the line's department.
func WithDepartmentScope(enabled bool) EngineOption {
	return func(e *Engine) { e.departmentScope = enabled }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{departmentScope: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DepartmentScoped reports whether AppliesTo filtering is enforced.
func (e *Engine) DepartmentScoped() bool { return e.departmentScope }

// CalculateServiceCharge returns the service charge for one line.
func (e *Engine) CalculateServiceCharge(line taxdomain.LineInput, cfg *taxdomain.ServiceChargeConfiguration) decimal.Decimal {
	if !line.ServiceChargeApplicable || cfg == nil || !cfg.IsActive {
		return decimal.Zero
	}
	if !cfg.AppliesToDepartment(line.Department) || cfg.IsExempt(string(line.Department)) {
		return decimal.Zero
	}
	return money.Percent(line.NetAmount, cfg.Rate)
}

// CalculateLineTaxes returns the tax detail for one line, ordered by
// calculation order. Each amount is rounded to cents individually. A compound
// tax raises the base of every tax that follows it.
func (e *Engine) CalculateLineTaxes(line taxdomain.LineInput, taxes []taxdomain.TaxConfiguration, cfg *taxdomain.ServiceChargeConfiguration) []taxdomain.LineTaxDetail {
	if !line.Taxable {
		return []taxdomain.LineTaxDetail{}
	}

	applicable := e.applicableTaxes(line, taxes)
	if len(applicable) == 0 {
		return []taxdomain.LineTaxDetail{}
	}

	serviceChargeTaxable := line.ServiceChargeApplicable &&
		cfg != nil && cfg.IsActive && cfg.IsTaxable &&
		line.ServiceChargeAmount.IsPositive()

	base := line.NetAmount
	details := make([]taxdomain.LineTaxDetail, 0, len(applicable))
	for _, tax := range applicable {
		taxable := base
		if serviceChargeTaxable && tax.TaxableOnServiceCharge {
			taxable = taxable.Add(line.ServiceChargeAmount)
		}
		amount := money.Percent(taxable, tax.Rate)
		details = append(details, taxdomain.LineTaxDetail{
			TaxConfigID:      tax.ID,
			TaxType:          tax.Type,
			TaxName:          tax.Name,
			TaxRate:          tax.Rate,
			TaxableAmount:    money.Round2(taxable),
			TaxAmount:        amount,
			IsInclusive:      tax.IsInclusive,
			IsCompound:       tax.IsCompoundTax,
			CalculationOrder: tax.CalculationOrder,
		})
		if tax.IsCompoundTax {
			base = base.Add(amount)
		}
	}
	return details
}

// TotalTax sums the tax amounts of a line.
func TotalTax(details []taxdomain.LineTaxDetail) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(d.TaxAmount)
	}
	return total
}

func (e *Engine) applicableTaxes(line taxdomain.LineInput, taxes []taxdomain.TaxConfiguration) []taxdomain.TaxConfiguration {
	out := make([]taxdomain.TaxConfiguration, 0, len(taxes))
	for _, tax := range taxes {
		if !tax.IsActive {
			continue
		}
		if tax.IsExempt(line.ItemType, string(line.Department)) {
			continue
		}
		if e.departmentScope && !tax.AppliesToDepartment(line.Department) {
			continue
		}
		out = append(out, tax)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalculationOrder < out[j].CalculationOrder
	})
	return out
}
