package main

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"assettrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// detectMIME infers the content type from the filename alone; file contents
// are never inspected. Unknown extensions fall back to a generic binary type.
func detectMIME(filename string) string {
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if mt == "" {
		return "application/octet-stream"
	}
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt
}

// storeDocument reads the full upload into memory and persists it in-row
// alongside the owning asset.
func storeDocument(tx *gorm.DB, asset *models.Asset, fh *multipart.FileHeader) (models.AssetDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return models.AssetDocument{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return models.AssetDocument{}, err
	}
	doc := models.AssetDocument{
		AssetID:  asset.ID,
		FileData: data,
		FileName: fh.Filename,
		FileType: detectMIME(fh.Filename),
		FileSize: int64(len(data)),
	}
	if err := tx.Create(&doc).Error; err != nil {
		return models.AssetDocument{}, err
	}
	return doc, nil
}

// documentMetadata lists an asset's documents without their byte content.
func documentMetadata(assetID uint) ([]models.AssetDocument, error) {
	var docs []models.AssetDocument
	err := db.Model(&models.AssetDocument{}).
		Select("id, uploaded_at, asset_id, file_name, file_type, file_size, name").
		Where("asset_id = ?", assetID).
		Order("id desc").
		Find(&docs).Error
	return docs, err
}

// loadOwnDocument fetches the document and enforces that the requester owns
// the parent asset. Non-owners get an explicit forbidden response.
func loadOwnDocument(c *gin.Context, user *models.User) (*models.AssetDocument, *models.Asset, bool) {
	var doc models.AssetDocument
	if err := db.First(&doc, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return nil, nil, false
	}
	var asset models.Asset
	if err := db.First(&asset, doc.AssetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
		return nil, nil, false
	}
	if asset.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you don't have permission to access this document"})
		return nil, nil, false
	}
	return &doc, &asset, true
}

// uploadDocumentsHandler attaches one or more files to an asset. Each file is
// validated independently; one rejected file does not block the others.
func uploadDocumentsHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	asset, ok := loadOwnAsset(c, user)
	if !ok {
		return
	}
	files := formFiles(c)
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}
	ip := getClientIP(c)
	var stored []models.AssetDocument
	var rejected []gin.H
	for _, fh := range files {
		if err := validateDocumentHeader(fh); err != nil {
			rejected = append(rejected, gin.H{"file": fh.Filename, "error": err.Error()})
			continue
		}
		doc, err := storeDocument(db, asset, fh)
		if err != nil {
			rejected = append(rejected, gin.H{"file": fh.Filename, "error": "store failed"})
			continue
		}
		doc.FileData = nil // metadata only in the response
		stored = append(stored, doc)
		logActivity(user, models.ActionUpload, asset.Name, asset.Category,
			fmt.Sprintf("Uploaded document: %s", doc.FileName), ip)
	}
	c.JSON(http.StatusOK, gin.H{"stored": stored, "rejected": rejected})
}

// downloadDocumentHandler streams the stored bytes back bit-exact with the
// original filename and MIME type.
func downloadDocumentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	doc, asset, ok := loadOwnDocument(c, user)
	if !ok {
		return
	}
	logActivity(user, models.ActionDownload, asset.Name, asset.Category,
		fmt.Sprintf("Downloaded document: %s", doc.FileName), getClientIP(c))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.FileType, doc.FileData)
}

func deleteDocumentHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	doc, asset, ok := loadOwnDocument(c, user)
	if !ok {
		return
	}
	if err := db.Delete(doc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	logActivity(user, models.ActionDelete, asset.Name, asset.Category,
		fmt.Sprintf("Deleted document: %s", doc.FileName), getClientIP(c))
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}
