package main

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"assettrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// loadOwnAsset fetches the asset only if it belongs to the user, so foreign
// ids surface as not-found rather than leaking existence.
func loadOwnAsset(c *gin.Context, user *models.User) (*models.Asset, bool) {
	var asset models.Asset
	if err := db.Where("user_id = ?", user.ID).First(&asset, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return nil, false
	}
	return &asset, true
}

// formFiles returns the uploaded "files" parts, if any. Plain form posts
// without multipart content carry no files.
func formFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["files"]
}

// listAssetsHandler lists the user's assets with optional query filters.
func listAssetsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Asset{}).Where("user_id = ?", user.ID)
	if category := c.Query("category"); category != "" {
		if !models.Category(category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown category %q", category)})
			return
		}
		q = q.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("lower(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if minStr := c.Query("min_value"); minStr != "" {
		min, err := parseDecimal("min_value", minStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q = q.Where("value >= ?", min)
	}
	if maxStr := c.Query("max_value"); maxStr != "" {
		max, err := parseDecimal("max_value", maxStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		q = q.Where("value <= ?", max)
	}
	var assets []models.Asset
	if err := q.Order("id desc").Find(&assets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// createAssetHandler creates an asset from a form post, storing any attached
// documents in the same transaction. Invalid files are rejected individually
// without blocking the rest.
func createAssetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var form assetForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asset := models.Asset{UserID: user.ID}
	if err := form.apply(&asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var stored []models.AssetDocument
	var rejected []gin.H
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&asset).Error; err != nil {
			return err
		}
		for _, fh := range formFiles(c) {
			if err := validateDocumentHeader(fh); err != nil {
				rejected = append(rejected, gin.H{"file": fh.Filename, "error": err.Error()})
				continue
			}
			doc, err := storeDocument(tx, &asset, fh)
			if err != nil {
				return err
			}
			stored = append(stored, doc)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	logActivity(user, models.ActionCreate, asset.Name, asset.Category,
		fmt.Sprintf("Created asset with value %s", asset.Value), getClientIP(c))
	c.JSON(http.StatusOK, gin.H{"id": asset.ID, "documents": len(stored), "rejected": rejected})
}

// getAssetHandler returns the asset with its document metadata and records a
// view in the activity log.
func getAssetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	asset, ok := loadOwnAsset(c, user)
	if !ok {
		return
	}
	docs, err := documentMetadata(asset.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	asset.Documents = docs
	logActivity(user, models.ActionView, asset.Name, asset.Category, "", getClientIP(c))
	c.JSON(http.StatusOK, asset)
}

// updateAssetHandler rewrites the asset from the submitted form. The category
// variant clears detail columns first, so switching categories cannot leave
// stale fields behind. New files upload alongside the update.
func updateAssetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	asset, ok := loadOwnAsset(c, user)
	if !ok {
		return
	}
	var form assetForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := form.apply(asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var stored []models.AssetDocument
	var rejected []gin.H
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(asset).Error; err != nil {
			return err
		}
		for _, fh := range formFiles(c) {
			if err := validateDocumentHeader(fh); err != nil {
				rejected = append(rejected, gin.H{"file": fh.Filename, "error": err.Error()})
				continue
			}
			doc, err := storeDocument(tx, asset, fh)
			if err != nil {
				return err
			}
			stored = append(stored, doc)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	ip := getClientIP(c)
	for _, doc := range stored {
		logActivity(user, models.ActionUpload, asset.Name, asset.Category,
			fmt.Sprintf("Uploaded document: %s", doc.FileName), ip)
	}
	logActivity(user, models.ActionUpdate, asset.Name, asset.Category, "Updated asset", ip)
	c.JSON(http.StatusOK, gin.H{"id": asset.ID, "documents": len(stored), "rejected": rejected})
}

// deleteAssetHandler removes the asset and its documents. The audit entry is
// written first so the log snapshots the asset as it was at deletion time.
func deleteAssetHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	asset, ok := loadOwnAsset(c, user)
	if !ok {
		return
	}
	logActivity(user, models.ActionDelete, asset.Name, asset.Category,
		fmt.Sprintf("Deleted asset with value %s", asset.Value), getClientIP(c))
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", asset.ID).Delete(&models.AssetDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(asset).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "asset deleted"})
}
