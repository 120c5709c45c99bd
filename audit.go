package main

import (
	"log"
	"net/http"

	"assettrack/models"

	"github.com/gin-gonic/gin"
)

// logActivity appends one audit row. Best-effort: a failed write is logged
// and never fails the request that triggered it.
func logActivity(user *models.User, action, assetName string, category models.Category, details, ip string) {
	uid := user.ID
	entry := models.ActivityLog{
		UserID:        &uid,
		Action:        action,
		AssetName:     assetName,
		AssetCategory: string(category),
		Details:       details,
		IPAddress:     ip,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("activity log write failed (%s %s): %v", action, assetName, err)
	}
}

// activityLogHandler lists the caller's audit trail, newest first.
func activityLogHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var logs []models.ActivityLog
	if err := db.Where("user_id = ?", user.ID).Order("id desc").Limit(200).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, logs)
}
