package models

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// CategoryDetails is the closed set of per-category field variants. A variant
// carries only the fields relevant to its category; applying it to an asset
// first clears every detail column, so data from a previous category cannot
// survive a category switch.
type CategoryDetails interface {
	Category() Category
	// Validate checks required fields and choice sets for the variant.
	Validate() error
	apply(a *Asset)
}

// SetDetails stamps the variant's category onto the asset and replaces all
// detail columns with the variant's fields.
func (a *Asset) SetDetails(d CategoryDetails) {
	a.Category = d.Category()
	a.clearDetails()
	d.apply(a)
}

func (a *Asset) clearDetails() {
	a.Latitude = nil
	a.Longitude = nil
	a.Area = nil
	a.AreaUnit = nil
	a.WeightGrams = nil
	a.GoldPurity = nil
	a.Units = nil
	a.PurchasePricePerUnit = nil
	a.CurrentNAV = nil
	a.FolioNumber = nil
	a.SumAssured = nil
	a.PremiumAmount = nil
	a.PremiumFrequency = nil
	a.Nominee = nil
	a.InterestRate = nil
	a.MaturityAmount = nil
	a.PolicyNumber = nil
	a.Institution = nil
}

func checkChoice(field string, v *string, choices []string) error {
	if v == nil {
		return nil
	}
	if !slices.Contains(choices, *v) {
		return fmt.Errorf("invalid %s %q", field, *v)
	}
	return nil
}

// LandDetails: coordinates are mandatory for land assets.
type LandDetails struct {
	Latitude  *decimal.Decimal
	Longitude *decimal.Decimal
	Area      *decimal.Decimal
	AreaUnit  *string
}

func (LandDetails) Category() Category { return CategoryLands }

func (d LandDetails) Validate() error {
	if d.Latitude == nil || d.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required for land assets")
	}
	return checkChoice("area_unit", d.AreaUnit, AreaUnits)
}

func (d LandDetails) apply(a *Asset) {
	a.Latitude = d.Latitude
	a.Longitude = d.Longitude
	a.Area = d.Area
	a.AreaUnit = d.AreaUnit
}

type FlatDetails struct {
	Area     *decimal.Decimal
	AreaUnit *string
}

func (FlatDetails) Category() Category { return CategoryFlats }

func (d FlatDetails) Validate() error {
	return checkChoice("area_unit", d.AreaUnit, AreaUnits)
}

func (d FlatDetails) apply(a *Asset) {
	a.Area = d.Area
	a.AreaUnit = d.AreaUnit
}

type GoldDetails struct {
	WeightGrams *decimal.Decimal
	Purity      *string
}

func (GoldDetails) Category() Category { return CategoryGold }

func (d GoldDetails) Validate() error {
	return checkChoice("gold_purity", d.Purity, GoldPurities)
}

func (d GoldDetails) apply(a *Asset) {
	a.WeightGrams = d.WeightGrams
	a.GoldPurity = d.Purity
}

type StockDetails struct {
	Units                *decimal.Decimal
	PurchasePricePerUnit *decimal.Decimal
	CurrentNAV           *decimal.Decimal
	Institution          *string
}

func (StockDetails) Category() Category { return CategoryStocks }

func (StockDetails) Validate() error { return nil }

func (d StockDetails) apply(a *Asset) {
	a.Units = d.Units
	a.PurchasePricePerUnit = d.PurchasePricePerUnit
	a.CurrentNAV = d.CurrentNAV
	a.Institution = d.Institution
}

type MutualFundDetails struct {
	Units                *decimal.Decimal
	PurchasePricePerUnit *decimal.Decimal
	CurrentNAV           *decimal.Decimal
	FolioNumber          *string
	Institution          *string
}

func (MutualFundDetails) Category() Category { return CategoryMutualFunds }

func (MutualFundDetails) Validate() error { return nil }

func (d MutualFundDetails) apply(a *Asset) {
	a.Units = d.Units
	a.PurchasePricePerUnit = d.PurchasePricePerUnit
	a.CurrentNAV = d.CurrentNAV
	a.FolioNumber = d.FolioNumber
	a.Institution = d.Institution
}

type FixedDepositDetails struct {
	InterestRate   *decimal.Decimal
	MaturityAmount *decimal.Decimal
	PolicyNumber   *string
	Institution    *string
}

func (FixedDepositDetails) Category() Category { return CategoryFixedDeposit }

func (FixedDepositDetails) Validate() error { return nil }

func (d FixedDepositDetails) apply(a *Asset) {
	a.InterestRate = d.InterestRate
	a.MaturityAmount = d.MaturityAmount
	a.PolicyNumber = d.PolicyNumber
	a.Institution = d.Institution
}

// InsuranceDetails covers both medical and life insurance; Kind selects which.
type InsuranceDetails struct {
	Kind             Category
	SumAssured       *decimal.Decimal
	PremiumAmount    *decimal.Decimal
	PremiumFrequency *string
	Nominee          *string
	PolicyNumber     *string
	Institution      *string
}

func (d InsuranceDetails) Category() Category { return d.Kind }

func (d InsuranceDetails) Validate() error {
	if d.Kind != CategoryMedicalInsurance && d.Kind != CategoryLifeInsurance {
		return fmt.Errorf("invalid insurance category %q", d.Kind)
	}
	return checkChoice("premium_frequency", d.PremiumFrequency, PremiumFrequencies)
}

func (d InsuranceDetails) apply(a *Asset) {
	a.SumAssured = d.SumAssured
	a.PremiumAmount = d.PremiumAmount
	a.PremiumFrequency = d.PremiumFrequency
	a.Nominee = d.Nominee
	a.PolicyNumber = d.PolicyNumber
	a.Institution = d.Institution
}
