package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/schema"
	"fintrack/internal/storage"
)

// RecordServicer defines the record operations used by RecordHandler.
type RecordServicer interface {
	Kind() core.Kind
	List(ctx context.Context, sess storage.Session) ([]core.Record, error)
	Get(ctx context.Context, sess storage.Session, id int64) (*core.Record, error)
	Create(ctx context.Context, sess storage.Session, candidate core.Record) (*core.Record, error)
	Update(ctx context.Context, sess storage.Session, id int64, patch core.RecordPatch) (*core.Record, error)
	Delete(ctx context.Context, sess storage.Session, id int64) (bool, error)
}

// RecordHandler serves one record kind. Each request gets its own session.
type RecordHandler struct {
	service RecordServicer
	store   Store
}

func NewRecordHandler(service RecordServicer, store Store) *RecordHandler {
	return &RecordHandler{service: service, store: store}
}

func (h *RecordHandler) session(c *gin.Context) (storage.ScopedSession, func()) {
	sess := h.store.OpenSession()
	return sess, func() {
		if err := sess.Close(); err != nil {
			log.FromContext(c.Request.Context()).WarnContext(c.Request.Context(), "Session close failed", log.FieldError, err)
		}
	}
}

func (h *RecordHandler) List(c *gin.Context) {
	sess, done := h.session(c)
	defer done()

	items, err := h.service.List(c.Request.Context(), sess)
	if err != nil {
		RespondWithServiceError(c, err, fmt.Sprintf("Failed to list %s", h.service.Kind().Plural()))
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *RecordHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	sess, done := h.session(c)
	defer done()

	r, err := h.service.Get(c.Request.Context(), sess, id)
	if err != nil {
		RespondWithServiceError(c, err, fmt.Sprintf("Failed to get %s", h.service.Kind()))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RecordHandler) Create(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	sess, done := h.session(c)
	defer done()

	r, err := h.service.Create(c.Request.Context(), sess, in.Candidate(h.service.Kind()))
	if err != nil {
		RespondWithServiceError(c, err, fmt.Sprintf("Failed to create %s", h.service.Kind()))
		return
	}
	c.Header("Location", fmt.Sprintf("/%s/%d", h.service.Kind().Plural(), r.ID))
	c.JSON(http.StatusCreated, r)
}

func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	in, ok := h.bind(c)
	if !ok {
		return
	}
	sess, done := h.session(c)
	defer done()

	r, err := h.service.Update(c.Request.Context(), sess, id, in.Patch())
	if err != nil {
		RespondWithServiceError(c, err, fmt.Sprintf("Failed to update %s", h.service.Kind()))
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RecordHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	sess, done := h.session(c)
	defer done()

	if _, err := h.service.Delete(c.Request.Context(), sess, id); err != nil {
		RespondWithServiceError(c, err, fmt.Sprintf("Failed to delete %s", h.service.Kind()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s with id %d deleted", h.service.Kind(), id),
	})
}

func (h *RecordHandler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		RespondWithError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func (h *RecordHandler) bind(c *gin.Context) (schema.RecordInput, bool) {
	var in schema.RecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	if err := schema.Validate(in); err != nil {
		RespondWithValidationError(c, err)
		return in, false
	}
	return in, true
}

type healthHandler struct {
	store Store
}

func (h *healthHandler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Store ping failed", log.FieldError, err)
		RespondWithError(c, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *healthHandler) Live(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *healthHandler) Ready(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.String(http.StatusServiceUnavailable, "not ready")
		return
	}
	c.String(http.StatusOK, "ready")
}
