package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"assettrack/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

// setupTestServer wires the handlers to a fresh in-memory database.
func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// a shared in-memory database needs a single connection
	sqlDB.SetMaxOpenConns(1)
	migrateModels(gdb)
	db = gdb
	r := gin.New()
	setupRoutes(r)
	return r
}

// performRequest runs a request against the engine with optional bearer token.
func performRequest(r http.Handler, method, path string, body io.Reader, token, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	regBody, _ := json.Marshal(map[string]string{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret1",
		"password_confirm": "secret1",
	})
	resp := performRequest(r, http.MethodPost, "/signup", bytes.NewBuffer(regBody), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("signup failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	loginBody, _ := json.Marshal(map[string]string{"username": username, "password": "secret1"})
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(loginBody), "", "application/json")
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

// multipartForm builds a multipart body with asset fields plus optional files.
func multipartForm(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for name, content := range files {
		w, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = w.Write(content)
	}
	_ = mw.Close()
	return buf, mw.FormDataContentType()
}

func assetFields(name, category, value string) map[string]string {
	return map[string]string{
		"name":       name,
		"category":   category,
		"value":      value,
		"start_date": "2024-01-10",
	}
}

func createAsset(t *testing.T, r *gin.Engine, token string, fields map[string]string, files map[string][]byte) uint {
	t.Helper()
	body, ctype := multipartForm(t, fields, files)
	resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype)
	if resp.Code != http.StatusOK {
		t.Fatalf("create asset failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if out.ID == 0 {
		t.Fatalf("no asset id in response: %s", resp.Body.String())
	}
	return out.ID
}

func TestSignupLoginLogout(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	if resp := performRequest(r, http.MethodGet, "/dashboard", nil, token, ""); resp.Code != http.StatusOK {
		t.Fatalf("dashboard with session failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	if resp := performRequest(r, http.MethodGet, "/dashboard", nil, "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
	if resp := performRequest(r, http.MethodPost, "/logout", nil, token, ""); resp.Code != http.StatusOK {
		t.Fatalf("logout failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	// the token signature is still valid, but the session row is revoked
	if resp := performRequest(r, http.MethodGet, "/dashboard", nil, token, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.Code)
	}
}

func TestSignupPasswordMismatch(t *testing.T) {
	r := setupTestServer(t)
	body, _ := json.Marshal(map[string]string{
		"username": "bob", "email": "bob@example.com",
		"password": "secret1", "password_confirm": "secret2",
	})
	resp := performRequest(r, http.MethodPost, "/signup", bytes.NewBuffer(body), "", "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched passwords, got %d", resp.Code)
	}
}

func TestEndDateBeforeStartDateRejected(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	fields := assetFields("HDFC FD", "fixed_deposit", "50000")
	fields["end_date"] = "2023-12-31" // before start_date 2024-01-10
	body, ctype := multipartForm(t, fields, nil)
	resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", resp.Code, resp.Body.String())
	}

	fields["end_date"] = "2025-01-10"
	body, ctype = multipartForm(t, fields, nil)
	if resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype); resp.Code != http.StatusOK {
		t.Fatalf("valid end_date rejected status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestLandAssetRequiresCoordinates(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	fields := assetFields("Village plot", "lands", "750000")
	body, ctype := multipartForm(t, fields, nil)
	if resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without coordinates, got %d", resp.Code)
	}

	fields["latitude"] = "12.9716"
	body, ctype = multipartForm(t, fields, nil)
	if resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with only latitude, got %d", resp.Code)
	}

	fields["longitude"] = "77.5946"
	body, ctype = multipartForm(t, fields, nil)
	if resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with both coordinates, got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestUnknownCategoryRejected(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")
	body, ctype := multipartForm(t, assetFields("Mystery", "bitcoin", "100"), nil)
	if resp := performRequest(r, http.MethodPost, "/assets", body, token, ctype); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", resp.Code)
	}
}

func TestTotalValueScopedToOwner(t *testing.T) {
	r := setupTestServer(t)
	tokenA := signupAndLogin(t, r, "alice")
	tokenB := signupAndLogin(t, r, "bob")

	createAsset(t, r, tokenA, assetFields("Gold coins", "gold", "100.00"), nil)
	createAsset(t, r, tokenA, assetFields("Index fund", "mutual_funds", "250.50"), nil)
	createAsset(t, r, tokenB, assetFields("Bob stocks", "stocks", "9999"), nil)

	resp := performRequest(r, http.MethodGet, "/dashboard", nil, tokenA, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("dashboard failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var dash struct {
		TotalValue  string `json:"total_value"`
		TotalAssets int64  `json:"total_assets"`
		Breakdown   []struct {
			Category string `json:"category"`
			Total    string `json:"total"`
			Count    int64  `json:"count"`
		} `json:"category_breakdown"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.TotalValue != "350.5" {
		t.Errorf("expected total 350.5, got %s", dash.TotalValue)
	}
	if dash.TotalAssets != 2 {
		t.Errorf("expected 2 assets, got %d", dash.TotalAssets)
	}
	// full breakdown carries all 8 categories, zero-valued ones included
	if len(dash.Breakdown) != len(models.Categories) {
		t.Errorf("expected %d breakdown rows, got %d", len(models.Categories), len(dash.Breakdown))
	}
}

func TestAssetListFilters(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	createAsset(t, r, token, assetFields("Gold bar", "gold", "500"), nil)
	createAsset(t, r, token, assetFields("Sovereign GOLD bond", "gold", "2500"), nil)
	createAsset(t, r, token, assetFields("Blue chip stocks", "stocks", "4000"), nil)
	createAsset(t, r, token, assetFields("Penthouse", "flats", "9000000"), nil)

	decode := func(resp *httptest.ResponseRecorder) []models.Asset {
		t.Helper()
		if resp.Code != http.StatusOK {
			t.Fatalf("list failed status=%d body=%s", resp.Code, resp.Body.String())
		}
		var assets []models.Asset
		if err := json.Unmarshal(resp.Body.Bytes(), &assets); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return assets
	}

	assets := decode(performRequest(r, http.MethodGet, "/assets?min_value=1000&max_value=5000", nil, token, ""))
	if len(assets) != 2 {
		t.Fatalf("value range filter: expected 2 assets, got %d", len(assets))
	}
	for _, a := range assets {
		if a.Value.LessThan(decimalFromString(t, "1000")) || a.Value.GreaterThan(decimalFromString(t, "5000")) {
			t.Errorf("asset %s value %s outside [1000,5000]", a.Name, a.Value)
		}
	}

	assets = decode(performRequest(r, http.MethodGet, "/assets?search=gold", nil, token, ""))
	if len(assets) != 2 {
		t.Fatalf("search filter: expected 2 assets, got %d", len(assets))
	}

	assets = decode(performRequest(r, http.MethodGet, "/assets?category=stocks", nil, token, ""))
	if len(assets) != 1 || assets[0].Name != "Blue chip stocks" {
		t.Fatalf("category filter: unexpected result %+v", assets)
	}

	if resp := performRequest(r, http.MethodGet, "/assets?category=bitcoin", nil, token, ""); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter category, got %d", resp.Code)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")
	id := createAsset(t, r, token, assetFields("Flat 4B", "flats", "6500000"), nil)

	content := []byte("%PDF-1.4\x00\x01\x02 sale deed bytes \xff\xfe")
	body, ctype := multipartForm(t, nil, map[string][]byte{"deed.pdf": content})
	resp := performRequest(r, http.MethodPost, fmt.Sprintf("/assets/%d/documents", id), body, token, ctype)
	if resp.Code != http.StatusOK {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var upload struct {
		Stored []models.AssetDocument `json:"stored"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &upload); err != nil || len(upload.Stored) != 1 {
		t.Fatalf("expected 1 stored document, body=%s", resp.Body.String())
	}
	doc := upload.Stored[0]
	if doc.FileType != "application/pdf" {
		t.Errorf("expected application/pdf, got %s", doc.FileType)
	}
	if doc.FileSize != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), doc.FileSize)
	}
	if doc.Name != "deed" {
		t.Errorf("expected defaulted name deed, got %q", doc.Name)
	}

	dl := performRequest(r, http.MethodGet, fmt.Sprintf("/documents/%d/download", doc.ID), nil, token, "")
	if dl.Code != http.StatusOK {
		t.Fatalf("download failed status=%d body=%s", dl.Code, dl.Body.String())
	}
	if !bytes.Equal(dl.Body.Bytes(), content) {
		t.Error("downloaded bytes differ from uploaded content")
	}
	if got := dl.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("expected Content-Type application/pdf, got %s", got)
	}
	if got := dl.Header().Get("Content-Disposition"); got != `attachment; filename="deed.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
}

func TestDocumentValidation(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")
	id := createAsset(t, r, token, assetFields("Gold ring", "gold", "30000"), nil)

	// disallowed extension is rejected, the valid file still lands
	body, ctype := multipartForm(t, nil, map[string][]byte{
		"receipt.jpg": []byte("jpeg bytes"),
		"virus.exe":   []byte("nope"),
	})
	resp := performRequest(r, http.MethodPost, fmt.Sprintf("/assets/%d/documents", id), body, token, ctype)
	if resp.Code != http.StatusOK {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		Stored   []models.AssetDocument `json:"stored"`
		Rejected []map[string]string    `json:"rejected"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if len(out.Stored) != 1 || out.Stored[0].FileName != "receipt.jpg" {
		t.Errorf("expected receipt.jpg stored, got %+v", out.Stored)
	}
	if len(out.Rejected) != 1 || out.Rejected[0]["file"] != "virus.exe" {
		t.Errorf("expected virus.exe rejected, got %+v", out.Rejected)
	}

	// size cap
	t.Setenv("MAX_DOCUMENT_SIZE", "8")
	body, ctype = multipartForm(t, nil, map[string][]byte{"big.pdf": []byte("0123456789abcdef")})
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/assets/%d/documents", id), body, token, ctype)
	if resp.Code != http.StatusOK {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	out.Stored, out.Rejected = nil, nil
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if len(out.Stored) != 0 || len(out.Rejected) != 1 {
		t.Errorf("expected oversize file rejected, got stored=%+v rejected=%+v", out.Stored, out.Rejected)
	}
}

func TestDocumentOwnershipForbidden(t *testing.T) {
	r := setupTestServer(t)
	tokenA := signupAndLogin(t, r, "alice")
	tokenB := signupAndLogin(t, r, "bob")

	id := createAsset(t, r, tokenA, assetFields("LIC policy", "life_insurance", "200000"), map[string][]byte{
		"policy.pdf": []byte("policy document"),
	})
	var doc models.AssetDocument
	if err := db.Where("asset_id = ?", id).First(&doc).Error; err != nil {
		t.Fatalf("document not stored: %v", err)
	}

	if resp := performRequest(r, http.MethodGet, fmt.Sprintf("/documents/%d/download", doc.ID), nil, tokenB, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign download, got %d", resp.Code)
	}
	if resp := performRequest(r, http.MethodDelete, fmt.Sprintf("/documents/%d", doc.ID), nil, tokenB, ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign delete, got %d", resp.Code)
	}
	// asset routes are owner-scoped, so the foreign id reads as missing
	if resp := performRequest(r, http.MethodGet, fmt.Sprintf("/assets/%d", id), nil, tokenB, ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign asset, got %d", resp.Code)
	}
	// owner still has access
	if resp := performRequest(r, http.MethodGet, fmt.Sprintf("/documents/%d/download", doc.ID), nil, tokenA, ""); resp.Code != http.StatusOK {
		t.Fatalf("owner download failed status=%d", resp.Code)
	}
}

func TestDeleteAssetCascadesAndAudits(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	landFields := assetFields("Farm land", "lands", "1200000")
	landFields["latitude"] = "10.1"
	landFields["longitude"] = "76.2"
	id := createAsset(t, r, token, landFields, map[string][]byte{
		"survey.pdf": []byte("survey"),
		"photo.jpg":  []byte("photo"),
	})

	var docCount int64
	db.Model(&models.AssetDocument{}).Where("asset_id = ?", id).Count(&docCount)
	if docCount != 2 {
		t.Fatalf("expected 2 documents before delete, got %d", docCount)
	}

	resp := performRequest(r, http.MethodDelete, fmt.Sprintf("/assets/%d", id), nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	db.Model(&models.AssetDocument{}).Where("asset_id = ?", id).Count(&docCount)
	if docCount != 0 {
		t.Errorf("expected documents cascade-deleted, %d remain", docCount)
	}

	var entries []models.ActivityLog
	db.Where("action = ? AND asset_name = ?", models.ActionDelete, "Farm land").Find(&entries)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one delete audit entry, got %d", len(entries))
	}
	if entries[0].AssetCategory != "lands" {
		t.Errorf("audit entry should snapshot category lands, got %s", entries[0].AssetCategory)
	}
}

func TestChartDataOmitsEmptyCategories(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	createAsset(t, r, token, assetFields("Gold chain", "gold", "100"), nil)
	createAsset(t, r, token, assetFields("Gold coin", "gold", "50"), nil)
	createAsset(t, r, token, assetFields("Tech shares", "stocks", "200"), nil)

	resp := performRequest(r, http.MethodGet, "/api/chart-data", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("chart-data failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var chart struct {
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
		Colors []string  `json:"colors"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	// two categories with holdings, ordered by total desc
	if len(chart.Labels) != 2 || chart.Labels[0] != "Stocks" || chart.Labels[1] != "Gold" {
		t.Fatalf("unexpected labels %v", chart.Labels)
	}
	if chart.Values[0] != 200 || chart.Values[1] != 150 {
		t.Errorf("unexpected values %v", chart.Values)
	}
	if chart.Colors[0] != "#10B981" || chart.Colors[1] != "#F97316" {
		t.Errorf("unexpected colors %v", chart.Colors)
	}
}

func TestCategorySwitchClearsIrrelevantFields(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")

	goldFields := assetFields("Reclassified", "gold", "1000")
	goldFields["weight_grams"] = "25.5"
	goldFields["gold_purity"] = "22k"
	id := createAsset(t, r, token, goldFields, nil)

	stockFields := assetFields("Reclassified", "stocks", "1000")
	stockFields["units"] = "10"
	stockFields["institution"] = "Broker Ltd"
	body, ctype := multipartForm(t, stockFields, nil)
	resp := performRequest(r, http.MethodPut, fmt.Sprintf("/assets/%d", id), body, token, ctype)
	if resp.Code != http.StatusOK {
		t.Fatalf("update failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	var asset models.Asset
	if err := db.First(&asset, id).Error; err != nil {
		t.Fatalf("reload asset: %v", err)
	}
	if asset.Category != models.CategoryStocks {
		t.Errorf("category not switched, got %s", asset.Category)
	}
	if asset.WeightGrams != nil || asset.GoldPurity != nil {
		t.Error("gold fields survived the category switch")
	}
	if asset.Units == nil {
		t.Error("stock units missing after update")
	}
}

func TestActivityLogTrail(t *testing.T) {
	r := setupTestServer(t)
	token := signupAndLogin(t, r, "alice")
	id := createAsset(t, r, token, assetFields("Audited FD", "fixed_deposit", "40000"), nil)

	performRequest(r, http.MethodGet, fmt.Sprintf("/assets/%d", id), nil, token, "")

	resp := performRequest(r, http.MethodGet, "/activity", nil, token, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("activity failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var logs []models.ActivityLog
	if err := json.Unmarshal(resp.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decode activity: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected create+view entries, got %d", len(logs))
	}
	// newest first
	if logs[0].Action != models.ActionView || logs[1].Action != models.ActionCreate {
		t.Errorf("unexpected order: %s, %s", logs[0].Action, logs[1].Action)
	}
	if logs[1].Details != "Created asset with value 40000" {
		t.Errorf("unexpected create details %q", logs[1].Details)
	}
}
