package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Department is the hotel department a charge is posted from.
type Department string

const (
	DepartmentFrontOffice  Department = "front-office"
	DepartmentHousekeeping Department = "housekeeping"
	DepartmentFNB          Department = "fnb"
	DepartmentKitchen      Department = "kitchen"
	DepartmentSpa          Department = "spa"
	DepartmentLaundry      Department = "laundry"
	DepartmentMaintenance  Department = "maintenance"
	DepartmentTransport    Department = "transport"
	DepartmentOther        Department = "other"
)

// TaxType identifies a tax regime. Consolidated invoice tax rows are keyed
// by (TaxType, Rate).
type TaxType string

const (
	TaxTypeVAT        TaxType = "vat"
	TaxTypeSSCL       TaxType = "sscl"
	TaxTypeTourismDev TaxType = "tdl"
	TaxTypeCityTax    TaxType = "city-tax"
	TaxTypeOther      TaxType = "other"
)

var maxRate = decimal.NewFromInt(100)

// TaxConfiguration is one tax applied to invoice lines. Active configurations
// are applied in ascending CalculationOrder.
type TaxConfiguration struct {
	ID                     snowflake.ID                    `gorm:"primaryKey" json:"id"`
	Name                   string                          `gorm:"type:text;not null" json:"name"`
	Type                   TaxType                         `gorm:"type:text;not null" json:"type"`
	Rate                   decimal.Decimal                 `gorm:"type:numeric(7,4);not null" json:"rate"` // percentage, 15 means 15%
	IsInclusive            bool                            `gorm:"not null" json:"is_inclusive"`
	IsActive               bool                            `gorm:"not null" json:"is_active"`
	IsCompoundTax          bool                            `gorm:"not null" json:"is_compound_tax"`
	AppliesTo              datatypes.JSONSlice[Department] `gorm:"type:json" json:"applies_to"`
	CalculationOrder       int                             `gorm:"not null" json:"calculation_order"`
	TaxableOnServiceCharge bool                            `gorm:"not null" json:"taxable_on_service_charge"`
	ExemptCategories       datatypes.JSONSlice[string]     `gorm:"type:json" json:"exempt_categories"`
	CreatedAt              time.Time                       `gorm:"not null" json:"created_at"`
	UpdatedAt              time.Time                       `gorm:"not null" json:"updated_at"`
}

func (TaxConfiguration) TableName() string { return "tax_configurations" }

func (t *TaxConfiguration) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(string(t.Type)) == "" {
		return ErrInvalidTaxType
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(maxRate) {
		return ErrInvalidTaxRate
	}
	return nil
}

// AppliesToDepartment reports whether the tax covers dept. An empty
// AppliesTo list covers every department.
func (t TaxConfiguration) AppliesToDepartment(dept Department) bool {
	return appliesTo(t.AppliesTo, dept)
}

// IsExempt reports whether any of the given categories is exempt.
func (t TaxConfiguration) IsExempt(categories ...string) bool {
	return exempt(t.ExemptCategories, categories)
}

// ServiceChargeConfiguration is the hotel-wide percentage surcharge. At most
// one active configuration is consulted per calculation.
type ServiceChargeConfiguration struct {
	ID               snowflake.ID                    `gorm:"primaryKey" json:"id"`
	Name             string                          `gorm:"type:text;not null" json:"name"`
	Rate             decimal.Decimal                 `gorm:"type:numeric(7,4);not null" json:"rate"`
	IsActive         bool                            `gorm:"not null" json:"is_active"`
	AppliesTo        datatypes.JSONSlice[Department] `gorm:"type:json" json:"applies_to"`
	IsTaxable        bool                            `gorm:"not null" json:"is_taxable"`
	ExemptCategories datatypes.JSONSlice[string]     `gorm:"type:json" json:"exempt_categories"`
	CreatedAt        time.Time                       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                       `gorm:"not null" json:"updated_at"`
}

func (ServiceChargeConfiguration) TableName() string { return "service_charge_configurations" }

func (c *ServiceChargeConfiguration) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if c.Rate.IsNegative() || c.Rate.GreaterThan(maxRate) {
		return ErrInvalidTaxRate
	}
	return nil
}

func (c ServiceChargeConfiguration) AppliesToDepartment(dept Department) bool {
	return appliesTo(c.AppliesTo, dept)
}

func (c ServiceChargeConfiguration) IsExempt(categories ...string) bool {
	return exempt(c.ExemptCategories, categories)
}

// LineInput is the part of an invoice line the engine reads.
type LineInput struct {
	Department              Department
	ItemType                string
	Taxable                 bool
	ServiceChargeApplicable bool
	NetAmount               decimal.Decimal
	ServiceChargeAmount     decimal.Decimal
}

// LineTaxDetail is the tax one configuration levied on one line.
type LineTaxDetail struct {
	TaxConfigID      snowflake.ID    `json:"tax_config_id"`
	TaxType          TaxType         `json:"tax_type"`
	TaxName          string          `json:"tax_name"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	TaxableAmount    decimal.Decimal `json:"taxable_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	IsInclusive      bool            `json:"is_inclusive"`
	IsCompound       bool            `json:"is_compound"`
	CalculationOrder int             `json:"calculation_order"`
}

// RateSet is the tax policy in force for a calculation.
type RateSet struct {
	Taxes         []TaxConfiguration
	ServiceCharge *ServiceChargeConfiguration
}

func appliesTo(list []Department, dept Department) bool {
	if len(list) == 0 {
		return true
	}
	return slices.Contains(list, dept)
}

func exempt(list []string, categories []string) bool {
	for _, category := range categories {
		if category == "" {
			continue
		}
		if slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, category) }) {
			return true
		}
	}
	return false
}
