package main

import (
	"net/http"

	"assettrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// categoryTotal is one row of the grouped value/count breakdown.
type categoryTotal struct {
	Category models.Category `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// categoryTotals runs the grouped sum/count query for the user's assets,
// largest total first. Categories without assets produce no rows.
func categoryTotals(userID uint) ([]categoryTotal, error) {
	var rows []categoryTotal
	err := db.Model(&models.Asset{}).
		Select("category, COALESCE(SUM(value), 0) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Label = rows[i].Category.Label()
	}
	return rows, nil
}

// chartPayload formats totals as label/value/color triples. Only categories
// with at least one asset appear.
func chartPayload(totals []categoryTotal) gin.H {
	labels := make([]string, 0, len(totals))
	values := make([]float64, 0, len(totals))
	colors := make([]string, 0, len(totals))
	for _, t := range totals {
		labels = append(labels, t.Label)
		values = append(values, t.Total.InexactFloat64())
		color, ok := models.CategoryColors[t.Category]
		if !ok {
			color = models.DefaultChartColor
		}
		colors = append(colors, color)
	}
	return gin.H{"labels": labels, "values": values, "colors": colors}
}

// dashboardHandler returns the aggregate view: overall total, the full
// per-category breakdown (zero-valued categories included), chart data, and
// short recency windows of assets and activity.
func dashboardHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	totals, err := categoryTotals(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	totalValue := decimal.Zero
	var totalAssets int64
	seen := make(map[models.Category]bool, len(totals))
	for _, t := range totals {
		totalValue = totalValue.Add(t.Total)
		totalAssets += t.Count
		seen[t.Category] = true
	}
	breakdown := totals
	for _, cat := range models.Categories {
		if !seen[cat] {
			breakdown = append(breakdown, categoryTotal{Category: cat, Label: cat.Label(), Total: decimal.Zero})
		}
	}
	var recentAssets []models.Asset
	if err := db.Where("user_id = ?", user.ID).Order("id desc").Limit(5).Find(&recentAssets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	var recentActivity []models.ActivityLog
	if err := db.Where("user_id = ?", user.ID).Order("id desc").Limit(10).Find(&recentActivity).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_value":        totalValue,
		"total_assets":       totalAssets,
		"category_breakdown": breakdown,
		"chart_data":         chartPayload(totals),
		"recent_assets":      recentAssets,
		"recent_activity":    recentActivity,
	})
}

// chartDataHandler serves just the chart triples for the caller's holdings.
func chartDataHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	totals, err := categoryTotals(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, chartPayload(totals))
}
