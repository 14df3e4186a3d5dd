package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"coupondesk/internal/blacklist"
	"coupondesk/internal/coupon"
	"coupondesk/internal/handler"
	"coupondesk/internal/model"
	"coupondesk/internal/repository"
	"coupondesk/internal/router"
	"coupondesk/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey     = "test-api-key-123"
	testStaffEmail = "kasir@example.com"
	minReasonLen   = 10
)

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	blacklistRepo := repository.NewBlacklistRepository(testDB.Pool, logger)

	generator := coupon.NewGenerator(couponRepo, logger)
	checker := blacklist.NewChecker(blacklistRepo, blacklist.DefaultTTL, logger)

	couponService := service.NewCouponService(couponRepo, userRepo, generator, checker, logger)
	validationService := service.NewValidationService(couponRepo, userRepo, minReasonLen, logger)

	couponHandler := handler.NewCouponHandler(couponService, logger)
	validationHandler := handler.NewValidationHandler(validationService, logger)

	return router.New(couponHandler, validationHandler, testAPIKey, logger)
}

// doRequest issues an authenticated JSON request against the test server.
func doRequest(t *testing.T, server http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("X-Staff-Email", testStaffEmail)

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

func TestAPI_CouponLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	CleanupDB(t, testDB.Pool)
	SeedStaff(t, testDB.Pool, testStaffEmail)

	// Issue a coupon.
	rec := doRequest(t, server, http.MethodPost, "/api/coupons", &model.CouponCreateRequest{
		Type:          "discount",
		Description:   "Diskon 20% semua menu",
		FirstName:     "Budi",
		LastName:      "Santoso",
		CustomerPhone: "0812-3456-789",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Coupon
	decodeJSON(t, rec, &created)
	assert.Equal(t, model.StatusActive, created.Status)
	assert.Equal(t, "628123456789", created.CustomerPhone)

	checkPath := "/api/coupons/check?code=" + url.QueryEscape(created.Code)

	// Eligibility probe.
	rec = doRequest(t, server, http.MethodGet, checkPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var check model.CheckResult
	decodeJSON(t, rec, &check)
	assert.True(t, check.Exists)
	assert.True(t, check.CanValidate)

	// Wrong password leaves the coupon untouched.
	rec = doRequest(t, server, http.MethodPost, "/api/coupons/validate", &handler.ValidateRequest{
		Code:     created.Code,
		Password: "password-salah",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, server, http.MethodGet, checkPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Redeem.
	rec = doRequest(t, server, http.MethodPost, "/api/coupons/validate", &handler.ValidateRequest{
		Code:     created.Code,
		Password: TestStaffPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ValidationResult
	decodeJSON(t, rec, &result)
	assert.Equal(t, "Kupon berhasil divalidasi", result.Message)
	assert.Equal(t, model.StatusUsed, result.Coupon.Status)

	// The coupon is no longer eligible.
	rec = doRequest(t, server, http.MethodGet, checkPath, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	decodeJSON(t, rec, &check)
	assert.Equal(t, "Kupon sudah digunakan", check.Message)

	// A second redemption is rejected.
	rec = doRequest(t, server, http.MethodPost, "/api/coupons/validate", &handler.ValidateRequest{
		Code:     created.Code,
		Password: TestStaffPassword,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	reversePath := "/api/coupons/" + created.ID.String() + "/reverse"

	// Reversal requires a meaningful reason.
	rec = doRequest(t, server, http.MethodPost, reversePath, &handler.ReverseRequest{
		Password: TestStaffPassword,
		Reason:   "typo",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Reverse with a proper reason.
	rec = doRequest(t, server, http.MethodPost, reversePath, &handler.ReverseRequest{
		Password: TestStaffPassword,
		Reason:   "salah input kasir",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &result)
	assert.Equal(t, "Penggunaan kupon berhasil dibatalkan", result.Message)
	assert.Equal(t, model.StatusActive, result.Coupon.Status)

	// Eligible again.
	rec = doRequest(t, server, http.MethodGet, checkPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Detail view carries the full audit trail.
	rec = doRequest(t, server, http.MethodGet, "/api/coupons/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail model.CouponDetail
	decodeJSON(t, rec, &detail)
	assert.Len(t, detail.Validations, 2)
}

func TestAPI_CheckWithScannedURL_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	CleanupDB(t, testDB.Pool)
	SeedStaff(t, testDB.Pool, testStaffEmail)

	rec := doRequest(t, server, http.MethodPost, "/api/coupons", &model.CouponCreateRequest{
		Type:          "free-item",
		Description:   "Gratis es teh",
		FirstName:     "Siti",
		LastName:      "Aminah",
		CustomerPhone: "08987654321",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Coupon
	decodeJSON(t, rec, &created)

	scanned := "https://kupon.example.com/coupon/" + created.Code
	rec = doRequest(t, server, http.MethodGet, "/api/coupons/check?code="+url.QueryEscape(scanned), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var check model.CheckResult
	decodeJSON(t, rec, &check)
	assert.True(t, check.CanValidate)
	assert.Equal(t, created.Code, check.Coupon.Code)
}

func TestAPI_BlacklistedCustomer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	CleanupDB(t, testDB.Pool)
	SeedStaff(t, testDB.Pool, testStaffEmail)

	blacklistRepo := repository.NewBlacklistRepository(testDB.Pool, zerolog.Nop())
	_, err := blacklistRepo.Upsert(context.Background(), "budi", "penyalahgunaan promo")
	require.NoError(t, err)

	rec := doRequest(t, server, http.MethodPost, "/api/coupons", &model.CouponCreateRequest{
		Type:          "discount",
		Description:   "Diskon 20% semua menu",
		FirstName:     "Budi",
		LastName:      "Santoso",
		CustomerPhone: "08123456789",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handler.ErrorResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "CUSTOMER_BLACKLISTED", resp.Error)
}

func TestAPI_Auth_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("Missing API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/coupons", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Invalid API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/coupons", nil)
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Health endpoint is open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Metrics endpoint is open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
