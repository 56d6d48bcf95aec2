package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promohub/internal/promotion"
	"promohub/internal/promotion/service"
)

type fakeService struct {
	promos     []*promotion.Promotion
	top        []promotion.PromoCount
	lastAction string
	lastPromo  int64
	lastUserID *int64
}

func (f *fakeService) List(ctx context.Context) ([]*promotion.Promotion, error) {
	return f.promos, nil
}

func (f *fakeService) Get(ctx context.Context, id int64) (*promotion.Promotion, error) {
	for _, p := range f.promos {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeService) LogClick(ctx context.Context, promotionID int64, action string, userID *int64) error {
	f.lastPromo = promotionID
	f.lastAction = action
	f.lastUserID = userID
	return nil
}

func (f *fakeService) Top(ctx context.Context) ([]promotion.PromoCount, error) {
	return f.top, nil
}

type fakeMedia struct {
	data []byte
	err  error
}

func (f *fakeMedia) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	return f.data, "image/png", f.err
}

func newRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/promotions", h.ListPromotions)
	r.Get("/api/promotions/{id}", h.GetPromotion)
	r.Post("/api/promotions/{id}/click", h.LogClick)
	r.Get("/api/top-promotions", h.TopPromotions)
	r.Get("/api/image/{file_id}", h.ProxyImage)
	return r
}

func strptr(s string) *string { return &s }

func TestListPromotionsShape(t *testing.T) {
	svc := &fakeService{promos: []*promotion.Promotion{
		{ID: 2, Title: "New", Description: "d", Link: "l", PreviewImageFileID: strptr("prev"), ImageFileID: strptr("img")},
		{ID: 1, Title: "Old", Description: "d", Link: "l"},
	}}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/promotions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Promotions []map[string]any `json:"promotions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Promotions, 2)

	first := body.Promotions[0]
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "prev", first["preview_image_file_id"])
	assert.Equal(t, "img", first["image_file_id"])

	second := body.Promotions[1]
	assert.Nil(t, second["preview_image_file_id"], "absent ref serializes as null")
	_, hasCreatedAt := first["created_at"]
	assert.False(t, hasCreatedAt, "created_at is not part of the wire shape")
}

func TestListPromotionsEmptyIsArray(t *testing.T) {
	r := newRouter(NewHandler(&fakeService{}, &fakeMedia{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/promotions", nil))

	assert.JSONEq(t, `{"promotions":[]}`, w.Body.String())
}

func TestGetPromotionNotFound(t *testing.T) {
	r := newRouter(NewHandler(&fakeService{}, &fakeMedia{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/promotions/99", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestGetPromotionFound(t *testing.T) {
	svc := &fakeService{promos: []*promotion.Promotion{
		{ID: 7, Title: "Sale", Description: "10% off", Link: "http://x"},
	}}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/promotions/7", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"title":"Sale","description":"10% off","link":"http://x","preview_image_file_id":null,"image_file_id":null}`, w.Body.String())
}

func TestLogClickDefaults(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	// неизвестный id промоакции — всё равно успех
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/promotions/999999/click", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, int64(999999), svc.lastPromo)
	assert.Equal(t, "redirect", svc.lastAction, "action defaults to redirect")
	assert.Nil(t, svc.lastUserID)
}

func TestLogClickUserIDFromHeader(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/promotions/1/click", strings.NewReader(`{"action":"view"}`))
	req.Header.Set("X-Telegram-User-Id", "555")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "view", svc.lastAction)
	require.NotNil(t, svc.lastUserID)
	assert.Equal(t, int64(555), *svc.lastUserID)
}

func TestLogClickBodyBeatsHeader(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/promotions/1/click", strings.NewReader(`{"user_id":111}`))
	req.Header.Set("X-Telegram-User-Id", "555")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastUserID)
	assert.Equal(t, int64(111), *svc.lastUserID)
}

func TestLogClickBadIDRejected(t *testing.T) {
	r := newRouter(NewHandler(&fakeService{}, &fakeMedia{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/promotions/abc/click", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopPromotionsShape(t *testing.T) {
	svc := &fakeService{top: []promotion.PromoCount{{ID: 1, Count: 3}, {ID: 2, Count: 1}}}
	r := newRouter(NewHandler(svc, &fakeMedia{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/top-promotions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, w.Body.String(), "counts stay internal")
}

func TestProxyImage(t *testing.T) {
	r := newRouter(NewHandler(&fakeService{}, &fakeMedia{data: []byte("png-bytes")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/file-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestProxyImageUpstreamFailureIs404(t *testing.T) {
	r := newRouter(NewHandler(&fakeService{}, &fakeMedia{err: errors.New("upstream down")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/file-1", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
