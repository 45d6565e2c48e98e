// Package api exposes the HTTP surface: webhook intake, image operations,
// listings, and the profile endpoint.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dteller/pixelforge/internal/domain"
	"github.com/dteller/pixelforge/internal/logging"
	"github.com/dteller/pixelforge/internal/service"
)

const (
	defaultPage  = 1
	defaultLimit = 9
)

type Handler struct {
	users    *service.Users
	images   *service.Images
	listing  *service.Listing
	recorder *service.Recorder
	log      logging.Logger
}

func NewHandler(users *service.Users, images *service.Images, listing *service.Listing, recorder *service.Recorder, log logging.Logger) *Handler {
	return &Handler{users: users, images: images, listing: listing, recorder: recorder, log: log}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// PaymentWebhook ingests payment-completion events. Both a fresh credit
// and a recognized duplicate answer 200: the processor retries anything
// else, and a duplicate must not be retried forever.
func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/webhooks/payments"))
	defer timer.ObserveDuration()

	var ev domain.PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		paymentEventsTotal.WithLabelValues("rejected").Inc()
		h.respondError(w, http.StatusBadRequest, "malformed payment event", "POST", "/webhooks/payments")
		return
	}

	t, err := h.recorder.Record(r.Context(), ev)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			paymentEventsTotal.WithLabelValues("duplicate").Inc()
			h.respondJSON(w, http.StatusOK, map[string]string{"status": "duplicate"}, "POST", "/webhooks/payments")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			// The buyer may simply not be synced yet; a non-success
			// answer makes the processor redeliver later.
			paymentEventsTotal.WithLabelValues("rejected").Inc()
			h.respondError(w, http.StatusNotFound, "buyer not found", "POST", "/webhooks/payments")
			return
		}
		if errors.Is(err, domain.ErrValidation) {
			paymentEventsTotal.WithLabelValues("rejected").Inc()
		} else {
			paymentEventsTotal.WithLabelValues("error").Inc()
		}
		h.respondDomainError(w, r, err, "POST", "/webhooks/payments")
		return
	}

	paymentEventsTotal.WithLabelValues("credited").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{"status": "credited", "transaction": t}, "POST", "/webhooks/payments")
}

type identityEvent struct {
	Type string             `json:"type"`
	Data domain.UserProfile `json:"data"`
}

// IdentityWebhook applies user.created / user.updated / user.deleted sync
// events from the auth provider. Replays answer 200 like the payment path.
func (h *Handler) IdentityWebhook(w http.ResponseWriter, r *http.Request) {
	var ev identityEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed identity event", "POST", "/webhooks/identity")
		return
	}

	switch ev.Type {
	case "user.created":
		u, err := h.users.SyncCreated(r.Context(), ev.Data)
		if errors.Is(err, domain.ErrAlreadyExists) {
			h.respondJSON(w, http.StatusOK, map[string]string{"status": "duplicate"}, "POST", "/webhooks/identity")
			return
		}
		if err != nil {
			h.respondDomainError(w, r, err, "POST", "/webhooks/identity")
			return
		}
		h.respondJSON(w, http.StatusCreated, u, "POST", "/webhooks/identity")
	case "user.updated":
		u, err := h.users.SyncUpdated(r.Context(), ev.Data)
		if err != nil {
			h.respondDomainError(w, r, err, "POST", "/webhooks/identity")
			return
		}
		h.respondJSON(w, http.StatusOK, u, "POST", "/webhooks/identity")
	case "user.deleted":
		err := h.users.SyncDeleted(r.Context(), ev.Data.AuthID)
		if errors.Is(err, domain.ErrNotFound) {
			h.respondJSON(w, http.StatusOK, map[string]string{"status": "already deleted"}, "POST", "/webhooks/identity")
			return
		}
		if err != nil {
			h.respondDomainError(w, r, err, "POST", "/webhooks/identity")
			return
		}
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"}, "POST", "/webhooks/identity")
	default:
		h.respondError(w, http.StatusBadRequest, "unknown event type", "POST", "/webhooks/identity")
	}
}

func pageParams(r *http.Request) (page, limit int64, err error) {
	page, limit = defaultPage, defaultLimit
	if v := r.URL.Query().Get("page"); v != "" {
		page, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, domain.ErrValidation
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, domain.ErrValidation
		}
	}
	return page, limit, nil
}

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("GET", "/images"))
	defer timer.ObserveDuration()

	page, limit, err := pageParams(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid pagination parameters", "GET", "/images")
		return
	}

	result, err := h.listing.List(r.Context(), service.ListParams{
		Page:   page,
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		h.respondDomainError(w, r, err, "GET", "/images")
		return
	}
	h.respondJSON(w, http.StatusOK, result, "GET", "/images")
}

func (h *Handler) MyImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthenticated", "GET", "/users/me/images")
		return
	}

	page, limit, err := pageParams(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid pagination parameters", "GET", "/users/me/images")
		return
	}

	result, err := h.listing.List(r.Context(), service.ListParams{
		Page:    page,
		Limit:   limit,
		OwnerID: userID,
	})
	if err != nil {
		h.respondDomainError(w, r, err, "GET", "/users/me/images")
		return
	}
	h.respondJSON(w, http.StatusOK, result, "GET", "/users/me/images")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthenticated", "GET", "/users/me")
		return
	}

	u, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		h.respondDomainError(w, r, err, "GET", "/users/me")
		return
	}
	h.respondJSON(w, http.StatusOK, u, "GET", "/users/me")
}

func (h *Handler) CreateImage(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/images"))
	defer timer.ObserveDuration()

	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthenticated", "POST", "/images")
		return
	}

	var in service.ImageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed JSON body", "POST", "/images")
		return
	}

	img, err := h.images.Create(r.Context(), userID, in)
	if err != nil {
		h.respondDomainError(w, r, err, "POST", "/images")
		return
	}
	h.respondJSON(w, http.StatusCreated, img, "POST", "/images")
}

func imageID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ErrValidation
	}
	return id, nil
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := imageID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid image id", "GET", "/images/{id}")
		return
	}

	img, err := h.images.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err, "GET", "/images/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, img, "GET", "/images/{id}")
}

func (h *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthenticated", "PUT", "/images/{id}")
		return
	}

	id, err := imageID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid image id", "PUT", "/images/{id}")
		return
	}

	var in service.ImageInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed JSON body", "PUT", "/images/{id}")
		return
	}

	img, err := h.images.Update(r.Context(), userID, id, in)
	if err != nil {
		h.respondDomainError(w, r, err, "PUT", "/images/{id}")
		return
	}
	h.respondJSON(w, http.StatusOK, img, "PUT", "/images/{id}")
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "unauthenticated", "DELETE", "/images/{id}")
		return
	}

	id, err := imageID(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid image id", "DELETE", "/images/{id}")
		return
	}

	if err := h.images.Delete(r.Context(), userID, id); err != nil {
		h.respondDomainError(w, r, err, "DELETE", "/images/{id}")
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil, "DELETE", "/images/{id}")
}
