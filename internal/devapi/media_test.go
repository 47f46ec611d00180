package devapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func upload(t *testing.T, app *fiber.App, path, token, filename, contentType string, data []byte, out any) int {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("altText", "front view")
	_ = mw.WriteField("displayOrder", "2")
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	pw, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = pw.Write(data)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestMediaLifecycle(t *testing.T) {
	s := newTestServer(t)
	app := s.App()
	admin := loginAs(t, app, "admin")
	lamp := productNamed(t, s, "Arc Floor Lamp")
	base := "/api/admin/media/products/" + itoa(lamp.ID)

	var env envelope
	require.Equal(t, http.StatusBadRequest, upload(t, app, base+"/images", admin, "notes.txt", "text/plain", []byte("hi"), &env))
	assert.Equal(t, "Invalid image type. Allowed types: JPEG, PNG, WebP, GIF", env.Message)

	require.Equal(t, http.StatusBadRequest, upload(t, app, base+"/videos", admin, "a.png", "image/png", pngBytes, &env))
	assert.Equal(t, "Invalid video type. Allowed types: MP4, WebM", env.Message)

	// no declared type: sniffed from content
	var m domain.ProductMedia
	require.Equal(t, http.StatusCreated, upload(t, app, base+"/images", admin, "a.png", "", pngBytes, &m))
	assert.Equal(t, domain.MediaImage, m.MediaType)
	assert.Equal(t, "front view", m.AltText)
	assert.Equal(t, 2, m.DisplayOrder)
	require.Contains(t, m.URL, "/media/products/")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, m.URL[strings.Index(m.URL, "/media/"):], nil))
	require.NoError(t, err)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, pngBytes, got)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	var list []domain.ProductMedia
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, base, admin, nil, &list))
	require.Len(t, list, 1)

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/admin/media/"+itoa(m.ID)+"?displayOrder=0&altText=side", admin, nil, &m))
	assert.Equal(t, 0, m.DisplayOrder)
	assert.Equal(t, "side", m.AltText)

	alice := loginAs(t, app, "alice")
	require.Equal(t, http.StatusForbidden, call(t, app, http.MethodGet, base, alice, nil, nil))

	require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/admin/media/"+itoa(m.ID), admin, nil, nil))
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, base, admin, nil, &list))
	assert.Empty(t, list)
}
