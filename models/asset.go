package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of tracked asset types.
type Category string

const (
	CategoryMutualFunds      Category = "mutual_funds"
	CategoryStocks           Category = "stocks"
	CategoryLands            Category = "lands"
	CategoryFlats            Category = "flats"
	CategoryFixedDeposit     Category = "fixed_deposit"
	CategoryMedicalInsurance Category = "medical_insurance"
	CategoryLifeInsurance    Category = "life_insurance"
	CategoryGold             Category = "gold"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryMutualFunds,
	CategoryStocks,
	CategoryLands,
	CategoryFlats,
	CategoryFixedDeposit,
	CategoryMedicalInsurance,
	CategoryLifeInsurance,
	CategoryGold,
}

// CategoryLabels maps categories to their display names.
var CategoryLabels = map[Category]string{
	CategoryMutualFunds:      "Mutual Funds",
	CategoryStocks:           "Stocks",
	CategoryLands:            "Lands",
	CategoryFlats:            "Flats",
	CategoryFixedDeposit:     "Fixed Deposit",
	CategoryMedicalInsurance: "Medical Insurance",
	CategoryLifeInsurance:    "Life Insurance",
	CategoryGold:             "Gold",
}

// CategoryColors maps categories to their fixed chart colors.
var CategoryColors = map[Category]string{
	CategoryMutualFunds:      "#3B82F6",
	CategoryStocks:           "#10B981",
	CategoryLands:            "#8B5CF6",
	CategoryFlats:            "#F59E0B",
	CategoryFixedDeposit:     "#EF4444",
	CategoryMedicalInsurance: "#EC4899",
	CategoryLifeInsurance:    "#06B6D4",
	CategoryGold:             "#F97316",
}

// DefaultChartColor is used for any category missing from CategoryColors.
const DefaultChartColor = "#6B7280"

func (c Category) Valid() bool {
	_, ok := CategoryLabels[c]
	return ok
}

// Label returns the display name, falling back to the raw tag.
func (c Category) Label() string {
	if l, ok := CategoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Choice sets for category detail fields.
var (
	AreaUnits          = []string{"sqft", "sqm", "acres", "hectares", "cents", "guntha"}
	GoldPurities       = []string{"24k", "22k", "18k", "14k"}
	PremiumFrequencies = []string{"monthly", "quarterly", "half_yearly", "yearly", "one_time"}
)

// Asset is one tracked holding. Common columns are always set; the nullable
// detail columns are owned by the category variant applied via SetDetails.
type Asset struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      uint            `gorm:"index;not null" json:"user_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Category    Category        `gorm:"size:50;not null;index" json:"category"`
	Value       decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"value"`
	Description string          `gorm:"type:text" json:"description"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     *time.Time      `json:"end_date"`

	// Land/flat detail columns
	Latitude  *decimal.Decimal `gorm:"type:numeric(10,7)" json:"latitude,omitempty"`
	Longitude *decimal.Decimal `gorm:"type:numeric(10,7)" json:"longitude,omitempty"`
	Area      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"area,omitempty"`
	AreaUnit  *string          `gorm:"size:20" json:"area_unit,omitempty"`

	// Gold detail columns
	WeightGrams *decimal.Decimal `gorm:"type:numeric(10,3)" json:"weight_grams,omitempty"`
	GoldPurity  *string          `gorm:"size:10" json:"gold_purity,omitempty"`

	// Stocks / mutual fund detail columns
	Units                *decimal.Decimal `gorm:"type:numeric(15,4)" json:"units,omitempty"`
	PurchasePricePerUnit *decimal.Decimal `gorm:"type:numeric(12,4)" json:"purchase_price_per_unit,omitempty"`
	CurrentNAV           *decimal.Decimal `gorm:"column:current_nav;type:numeric(12,4)" json:"current_nav,omitempty"`
	FolioNumber          *string          `gorm:"size:50" json:"folio_number,omitempty"`

	// Insurance detail columns
	SumAssured       *decimal.Decimal `gorm:"type:numeric(15,2)" json:"sum_assured,omitempty"`
	PremiumAmount    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"premium_amount,omitempty"`
	PremiumFrequency *string          `gorm:"size:20" json:"premium_frequency,omitempty"`
	Nominee          *string          `gorm:"size:255" json:"nominee,omitempty"`

	// Fixed deposit detail columns
	InterestRate   *decimal.Decimal `gorm:"type:numeric(5,2)" json:"interest_rate,omitempty"`
	MaturityAmount *decimal.Decimal `gorm:"type:numeric(15,2)" json:"maturity_amount,omitempty"`

	// Shared with FD, insurance, stocks, mutual funds
	PolicyNumber *string `gorm:"size:100" json:"policy_number,omitempty"`
	Institution  *string `gorm:"size:255" json:"institution,omitempty"`

	Documents []AssetDocument `gorm:"foreignKey:AssetID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"documents,omitempty"`
}

// Active reports whether the asset has not passed its end date.
func (a *Asset) Active(now time.Time) bool {
	if a.EndDate == nil {
		return true
	}
	return !a.EndDate.Before(now)
}
