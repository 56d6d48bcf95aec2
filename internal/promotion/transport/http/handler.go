package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"promohub/internal/metrics"
	"promohub/internal/promotion"
	"promohub/internal/promotion/service"
)

var Validate = validator.New()

type PromotionService interface {
	List(ctx context.Context) ([]*promotion.Promotion, error)
	Get(ctx context.Context, id int64) (*promotion.Promotion, error)
	LogClick(ctx context.Context, promotionID int64, action string, userID *int64) error
	Top(ctx context.Context) ([]promotion.PromoCount, error)
}

type MediaFetcher interface {
	Fetch(ctx context.Context, fileID string) (data []byte, contentType string, err error)
}

type Handler struct {
	Service PromotionService
	Media   MediaFetcher
}

func NewHandler(service PromotionService, media MediaFetcher) *Handler {
	return &Handler{Service: service, Media: media}
}

// promoResponse — точная форма для веб-вью, created_at наружу не отдаётся.
type promoResponse struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Link               string  `json:"link"`
	PreviewImageFileID *string `json:"preview_image_file_id"`
	ImageFileID        *string `json:"image_file_id"`
}

func toResponse(p *promotion.Promotion) promoResponse {
	return promoResponse{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Link:               p.Link,
		PreviewImageFileID: p.PreviewImageFileID,
		ImageFileID:        p.ImageFileID,
	}
}

// GET /api/promotions
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Service.List(r.Context())
	if err != nil {
		log.Printf("list promotions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	result := make([]promoResponse, 0, len(promos))
	for _, p := range promos {
		result = append(result, toResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"promotions": result})
}

// GET /api/promotions/{id}
func (h *Handler) GetPromotion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id"})
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	if err != nil {
		log.Printf("get promotion %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

type clickRequest struct {
	Action string `json:"action" validate:"omitempty,max=32"`
	UserID *int64 `json:"user_id"`
}

// POST /api/promotions/{id}/click
//
// Клик по несуществующей акции — не ошибка: аналитика best-effort.
func (h *Handler) LogClick(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid id"})
		return
	}

	var req clickRequest
	if r.Body != nil {
		// пустое или битое тело допустимо — берём значения по умолчанию
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			req = clickRequest{}
		}
	}
	if err := Validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}

	// user id: тело запроса в приоритете, затем транспортный заголовок
	userID := req.UserID
	if userID == nil {
		if raw := r.Header.Get("X-Telegram-User-Id"); raw != "" {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				userID = &v
			}
		}
	}

	action := req.Action
	if action == "" {
		action = "redirect"
	}

	if err := h.Service.LogClick(r.Context(), id, action, userID); err != nil {
		log.Printf("log click for promotion %d: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	metrics.ClicksLoggedTotal.WithLabelValues(action).Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GET /api/top-promotions
func (h *Handler) TopPromotions(w http.ResponseWriter, r *http.Request) {
	top, err := h.Service.Top(r.Context())
	if err != nil {
		log.Printf("top promotions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	result := make([]map[string]int64, 0, len(top))
	for _, pc := range top {
		result = append(result, map[string]int64{"id": pc.ID})
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/image/{file_id}
func (h *Handler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "file_id")

	data, contentType, err := h.Media.Fetch(r.Context(), fileID)
	if err != nil {
		// любой сбой апстрима схлопывается в 404
		metrics.MediaFetchesTotal.WithLabelValues("error").Inc()
		w.WriteHeader(http.StatusNotFound)
		return
	}

	metrics.MediaFetchesTotal.WithLabelValues("ok").Inc()
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
