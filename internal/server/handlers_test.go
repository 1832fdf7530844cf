package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"propnest/internal/config"
	"propnest/internal/database"
	"propnest/internal/identity"
	"propnest/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubVerifier accepts tokens of the form "uid:<uid>" and treats
// "outage" as a provider failure.
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*identity.Claims, error) {
	if token == "outage" {
		return nil, fmt.Errorf("dialing provider: %w", identity.ErrUnavailable)
	}
	if uid, found := strings.CutPrefix(token, "uid:"); found {
		return &identity.Claims{
			UID:         uid,
			Email:       uid + "@example.com",
			DisplayName: "User " + uid,
		}, nil
	}
	return nil, fmt.Errorf("unknown token: %w", identity.ErrInvalidToken)
}

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	// FK enforcement on, matching production Postgres.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{Env: "test", MediaDir: t.TempDir()}
	srv, err := NewServerWithDeps(cfg, db, nil, stubVerifier{})
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app, db
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

type multipartFile struct {
	field, name, contentType string
	content                  []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files []multipartFile) *http.Request {
	t.Helper()
	body := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.name))
		hdr.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func createListing(t *testing.T, app *fiber.App, title string, images ...multipartFile) models.Property {
	t.Helper()
	req := multipartRequest(t, "/api/properties", map[string]string{
		"title":         title,
		"description":   "A fine home",
		"location":      "Lisbon",
		"property_type": "apartment",
		"price":         "199999.99",
		"bedrooms":      "3",
		"bathrooms":     "2",
	}, images)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decodeJSON[models.Property](t, resp)
}

func TestAuth_MalformedHeaderEqualsMissing(t *testing.T) {
	_, app, _ := setupTestServer(t)

	headers := []string{
		"",
		"Bearer",
		"Basic abc123",
		"Bearer too many parts",
		"justatoken",
	}
	for _, header := range headers {
		req := httptest.NewRequest(fiber.MethodGet, "/api/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)

		body := decodeJSON[models.ErrorResponse](t, resp)
		assert.Equal(t, "Authorization required", body.Error, "header %q", header)
	}
}

func TestAuth_MalformedHeaderIsAnonymousOnPublicRoutes(t *testing.T) {
	_, app, _ := setupTestServer(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/properties", nil)
	req.Header.Set("Authorization", "Basic nonsense")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuth_InvalidTokenGetsFixedMessage(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodGet, "/api/profile", "garbage-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body := decodeJSON[models.ErrorResponse](t, resp)
	assert.Equal(t, "Invalid authentication token", body.Error)
}

func TestAuth_ProviderOutageIs503(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodGet, "/api/profile", "outage", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestProfile_ProvisionedOnceAcrossLogins(t *testing.T) {
	_, app, db := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodGet, "/api/profile", "uid:alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decodeJSON[models.UserProfile](t, resp)
	assert.Equal(t, "alice", profile.UID)
	assert.Equal(t, "alice@example.com", profile.Email)

	resp = doRequest(t, app, fiber.MethodGet, "/api/profile", "uid:alice", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.UserProfile{}).Where("uid = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestProfile_PartialUpdate(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodPost, "/api/profile", "uid:bob", fiber.Map{
		"phone": "+351 910 000 000",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := decodeJSON[models.UserProfile](t, resp)
	assert.Equal(t, "+351 910 000 000", profile.Phone)
	assert.Equal(t, "User bob", profile.DisplayName, "unset fields keep provisioned values")

	resp = doRequest(t, app, fiber.MethodGet, "/api/profile", "uid:bob", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile = decodeJSON[models.UserProfile](t, resp)
	assert.Equal(t, "+351 910 000 000", profile.Phone)
}

func TestProperties_CreateWithImagesAndReadBack(t *testing.T) {
	_, app, _ := setupTestServer(t)

	created := createListing(t, app, "Seaside duplex",
		multipartFile{field: "images", name: "front.png", contentType: "image/png", content: pngBytes(t, 320, 240)},
		multipartFile{field: "images", name: "back.png", contentType: "image/png", content: pngBytes(t, 240, 320)},
	)
	require.NotZero(t, created.ID)
	require.Len(t, created.Images, 2)
	for _, img := range created.Images {
		assert.True(t, strings.HasPrefix(img.URL, "/media/"), "image URL %q", img.URL)
		assert.True(t, strings.HasPrefix(img.ThumbnailURL, "/media/"), "thumbnail URL %q", img.ThumbnailURL)
	}

	resp := doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/properties/%d", created.ID), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	fetched := decodeJSON[models.Property](t, resp)
	assert.Equal(t, created.Title, fetched.Title)
	assert.True(t, created.Price.Equal(fetched.Price))
	require.Len(t, fetched.Images, 2)
	createdURLs := []string{created.Images[0].URL, created.Images[1].URL}
	assert.ElementsMatch(t, createdURLs, []string{fetched.Images[0].URL, fetched.Images[1].URL})
}

func TestProperties_ValidationFailurePersistsNothing(t *testing.T) {
	_, app, db := setupTestServer(t)

	req := multipartRequest(t, "/api/properties", map[string]string{
		"title": "Bad price house",
		"price": "not-a-number",
	}, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProperties_ListNewestFirst(t *testing.T) {
	_, app, _ := setupTestServer(t)

	createListing(t, app, "First")
	createListing(t, app, "Second")

	resp := doRequest(t, app, fiber.MethodGet, "/api/properties", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	listed := decodeJSON[[]models.Property](t, resp)
	require.Len(t, listed, 2)
	assert.Equal(t, "Second", listed[0].Title)
	assert.Equal(t, "First", listed[1].Title)
}

func TestProperties_PartialUpdateKeepsOtherFields(t *testing.T) {
	_, app, _ := setupTestServer(t)

	created := createListing(t, app, "Original title")

	resp := doRequest(t, app, fiber.MethodPatch, fmt.Sprintf("/api/properties/%d", created.ID), "", fiber.Map{
		"price":    "210000",
		"bedrooms": 0,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeJSON[models.Property](t, resp)
	assert.Equal(t, "Original title", updated.Title)
	assert.Equal(t, "210000", updated.Price.String())
	assert.Equal(t, 0, updated.Bedrooms, "explicit zero must overwrite")
	assert.Equal(t, 2, updated.Bathrooms, "absent field must keep its value")
}

func TestProperties_DeleteRemovesListingAndImages(t *testing.T) {
	_, app, db := setupTestServer(t)

	created := createListing(t, app, "To be removed",
		multipartFile{field: "images", name: "a.png", contentType: "image/png", content: pngBytes(t, 64, 64)},
	)

	resp := doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/properties/%d", created.ID), "", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, fmt.Sprintf("/api/properties/%d", created.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var orphans int64
	require.NoError(t, db.Model(&models.PropertyImage{}).Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestProperties_DeleteWishlistedListing(t *testing.T) {
	_, app, db := setupTestServer(t)

	created := createListing(t, app, "Saved then removed")

	resp := doRequest(t, app, fiber.MethodPost, "/api/wishlist", "uid:dave", fiber.Map{"property_id": created.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/properties/%d", created.ID), "", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode, "wishlist references must not block listing delete")

	resp = doRequest(t, app, fiber.MethodGet, "/api/wishlist", "uid:dave", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeJSON[[]models.WishlistEntry](t, resp)
	assert.Empty(t, entries)

	var remaining int64
	require.NoError(t, db.Model(&models.WishlistEntry{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestWishlist_DuplicateIsConflict(t *testing.T) {
	_, app, db := setupTestServer(t)

	created := createListing(t, app, "Wishable")

	resp := doRequest(t, app, fiber.MethodPost, "/api/wishlist", "uid:carol", fiber.Map{"property_id": created.ID})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodPost, "/api/wishlist", "uid:carol", fiber.Map{"property_id": created.ID})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.WishlistEntry{}).Where("user_uid = ?", "carol").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	resp = doRequest(t, app, fiber.MethodGet, "/api/wishlist", "uid:carol", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeJSON[[]models.WishlistEntry](t, resp)
	require.Len(t, entries, 1)
	assert.Equal(t, created.ID, entries[0].Property.ID)
}

func TestWishlist_UnknownPropertyIs404(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodPost, "/api/wishlist", "uid:carol", fiber.Map{"property_id": 9999})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWishlist_CrossUserAccessLooksMissing(t *testing.T) {
	_, app, _ := setupTestServer(t)

	created := createListing(t, app, "Contested")

	resp := doRequest(t, app, fiber.MethodPost, "/api/wishlist", "uid:owner", fiber.Map{"property_id": created.ID})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	entry := decodeJSON[models.WishlistEntry](t, resp)

	resp = doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/wishlist/%d", entry.ID), "uid:intruder", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/wishlist", "uid:owner", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decodeJSON[[]models.WishlistEntry](t, resp)
	assert.Len(t, entries, 1, "the entry must survive another user's delete")

	resp = doRequest(t, app, fiber.MethodDelete, fmt.Sprintf("/api/wishlist/%d/remove", entry.ID), "uid:owner", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestHealth_Liveness(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp := doRequest(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
