package main

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"assettrack/models"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// allowedDocumentExtensions is the document upload allow-list.
var allowedDocumentExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

const defaultMaxDocumentSize = 10 << 20 // 10 MiB

// maxDocumentSize returns the per-file upload cap in bytes (MAX_DOCUMENT_SIZE env override).
func maxDocumentSize() int64 {
	if v := os.Getenv("MAX_DOCUMENT_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return defaultMaxDocumentSize
}

// validateDocumentHeader rejects files outside the extension allow-list or
// above the configured size cap.
func validateDocumentHeader(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedDocumentExtensions[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	if fh.Size > maxDocumentSize() {
		return fmt.Errorf("file %q exceeds maximum size of %d bytes", fh.Filename, maxDocumentSize())
	}
	return nil
}

// assetForm is the submitted asset form. Every field binds as a string; the
// validation layer parses and routes them into the category variant.
type assetForm struct {
	Name        string `form:"name" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Value       string `form:"value" binding:"required"`
	Description string `form:"description"`
	StartDate   string `form:"start_date" binding:"required"`
	EndDate     string `form:"end_date"`

	Latitude             string `form:"latitude"`
	Longitude            string `form:"longitude"`
	Area                 string `form:"area"`
	AreaUnit             string `form:"area_unit"`
	WeightGrams          string `form:"weight_grams"`
	GoldPurity           string `form:"gold_purity"`
	Units                string `form:"units"`
	PurchasePricePerUnit string `form:"purchase_price_per_unit"`
	CurrentNAV           string `form:"current_nav"`
	FolioNumber          string `form:"folio_number"`
	SumAssured           string `form:"sum_assured"`
	PremiumAmount        string `form:"premium_amount"`
	PremiumFrequency     string `form:"premium_frequency"`
	Nominee              string `form:"nominee"`
	InterestRate         string `form:"interest_rate"`
	MaturityAmount       string `form:"maturity_amount"`
	PolicyNumber         string `form:"policy_number"`
	Institution          string `form:"institution"`
}

// apply validates the form and writes it onto the asset: common columns
// directly, detail columns through the category variant.
func (f *assetForm) apply(a *models.Asset) error {
	cat := models.Category(f.Category)
	if !cat.Valid() {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	value, err := parseDecimal("value", f.Value)
	if err != nil {
		return err
	}
	start, err := time.Parse(dateLayout, f.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date %q (expected YYYY-MM-DD)", f.StartDate)
	}
	var end *time.Time
	if f.EndDate != "" {
		t, err := time.Parse(dateLayout, f.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end_date %q (expected YYYY-MM-DD)", f.EndDate)
		}
		if t.Before(start) {
			return fmt.Errorf("end date cannot be before start date")
		}
		end = &t
	}
	details, err := f.details(cat)
	if err != nil {
		return err
	}
	if err := details.Validate(); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(f.Name)
	a.Value = value
	a.Description = f.Description
	a.StartDate = start
	a.EndDate = end
	a.SetDetails(details)
	return nil
}

// details builds the category variant from the form, parsing only the fields
// relevant to the selected category.
func (f *assetForm) details(cat models.Category) (models.CategoryDetails, error) {
	switch cat {
	case models.CategoryLands:
		lat, err := optDecimal("latitude", f.Latitude)
		if err != nil {
			return nil, err
		}
		lng, err := optDecimal("longitude", f.Longitude)
		if err != nil {
			return nil, err
		}
		area, err := optDecimal("area", f.Area)
		if err != nil {
			return nil, err
		}
		return models.LandDetails{Latitude: lat, Longitude: lng, Area: area, AreaUnit: optString(f.AreaUnit)}, nil
	case models.CategoryFlats:
		area, err := optDecimal("area", f.Area)
		if err != nil {
			return nil, err
		}
		return models.FlatDetails{Area: area, AreaUnit: optString(f.AreaUnit)}, nil
	case models.CategoryGold:
		weight, err := optDecimal("weight_grams", f.WeightGrams)
		if err != nil {
			return nil, err
		}
		return models.GoldDetails{WeightGrams: weight, Purity: optString(f.GoldPurity)}, nil
	case models.CategoryStocks:
		units, price, nav, err := f.unitFields()
		if err != nil {
			return nil, err
		}
		return models.StockDetails{
			Units:                units,
			PurchasePricePerUnit: price,
			CurrentNAV:           nav,
			Institution:          optString(f.Institution),
		}, nil
	case models.CategoryMutualFunds:
		units, price, nav, err := f.unitFields()
		if err != nil {
			return nil, err
		}
		return models.MutualFundDetails{
			Units:                units,
			PurchasePricePerUnit: price,
			CurrentNAV:           nav,
			FolioNumber:          optString(f.FolioNumber),
			Institution:          optString(f.Institution),
		}, nil
	case models.CategoryFixedDeposit:
		rate, err := optDecimal("interest_rate", f.InterestRate)
		if err != nil {
			return nil, err
		}
		maturity, err := optDecimal("maturity_amount", f.MaturityAmount)
		if err != nil {
			return nil, err
		}
		return models.FixedDepositDetails{
			InterestRate:   rate,
			MaturityAmount: maturity,
			PolicyNumber:   optString(f.PolicyNumber),
			Institution:    optString(f.Institution),
		}, nil
	case models.CategoryMedicalInsurance, models.CategoryLifeInsurance:
		sum, err := optDecimal("sum_assured", f.SumAssured)
		if err != nil {
			return nil, err
		}
		premium, err := optDecimal("premium_amount", f.PremiumAmount)
		if err != nil {
			return nil, err
		}
		return models.InsuranceDetails{
			Kind:             cat,
			SumAssured:       sum,
			PremiumAmount:    premium,
			PremiumFrequency: optString(f.PremiumFrequency),
			Nominee:          optString(f.Nominee),
			PolicyNumber:     optString(f.PolicyNumber),
			Institution:      optString(f.Institution),
		}, nil
	}
	return nil, fmt.Errorf("unknown category %q", cat)
}

func (f *assetForm) unitFields() (units, price, nav *decimal.Decimal, err error) {
	if units, err = optDecimal("units", f.Units); err != nil {
		return
	}
	if price, err = optDecimal("purchase_price_per_unit", f.PurchasePricePerUnit); err != nil {
		return
	}
	nav, err = optDecimal("current_nav", f.CurrentNAV)
	return
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}

func optDecimal(field, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseDecimal(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
