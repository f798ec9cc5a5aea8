package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/go-mdc"
	"github.com/jsamuelsen/go-mdc/internal/adapters/http/dto"
)

// ContextHandler exposes the diagnostic context over HTTP. Reads return a
// merged view of the request-local store and the process-wide store; writes
// go to the process-wide store only.
type ContextHandler struct {
	global *mdc.SharedStore
}

// NewContextHandler creates a new context handler backed by the given
// process-wide store.
func NewContextHandler(global *mdc.SharedStore) *ContextHandler {
	return &ContextHandler{
		global: global,
	}
}

// ListEntries handles GET /api/v1/context
// Returns a cursor-paginated, key-sorted view of the diagnostic context.
// Local entries shadow global entries under the same key.
func (h *ContextHandler) ListEntries(c *gin.Context) {
	var page dto.PaginationRequest

	err := dto.BindQueryAndValidate(c, &page)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"invalid pagination parameters",
			dto.ValidationErrors(err),
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	cursor, err := page.DecodeCursor()
	if err != nil && !errors.Is(err, dto.ErrNoCursor) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid cursor",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	entries := h.mergedEntries(c)

	// Resume after the cursor position. Entries are key-sorted, so the
	// cursor value is the last key of the previous page.
	if cursor != nil {
		idx := sort.Search(len(entries), func(i int) bool {
			return entries[i].Key > cursor.Value
		})
		entries = entries[idx:]
	}

	limit := page.GetLimit()
	if len(entries) > limit+1 {
		entries = entries[:limit+1]
	}

	resp := dto.NewPaginatedResponse(entries, limit, func(e dto.ContextEntryResponse) *dto.CursorData {
		return dto.NewCursor("key", e.Key, e.Key)
	})

	c.JSON(http.StatusOK, resp)
}

// GetEntry handles GET /api/v1/context/:key
// Looks up a single key, local store first, then the process-wide store.
func (h *ContextHandler) GetEntry(c *gin.Context) {
	key := c.Param("key")

	if value, ok := mdc.Get(c.Request.Context(), key); ok {
		c.JSON(http.StatusOK, dto.ContextEntryResponse{
			Key:   key,
			Value: value,
			Scope: dto.ScopeLocal,
		})

		return
	}

	if value, ok := h.global.Get(key); ok {
		c.JSON(http.StatusOK, dto.ContextEntryResponse{
			Key:   key,
			Value: value,
			Scope: dto.ScopeGlobal,
		})

		return
	}

	c.JSON(http.StatusNotFound, dto.NewErrorResponse(
		dto.ErrorCodeNotFound,
		"context key not found: "+key,
	).WithTraceID(dto.GetTraceID(c)))
}

// SetEntry handles PUT /api/v1/context/:key
// Sets a key in the process-wide store and reports the replaced value.
func (h *ContextHandler) SetEntry(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"context key is required",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	var req dto.SetContextEntryRequest

	err := dto.BindAndValidate(c, &req)
	if err != nil {
		if dto.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
				dto.ErrorCodeValidation,
				"request validation failed",
				dto.ValidationErrors(err),
			).WithTraceID(dto.GetTraceID(c)))

			return
		}

		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid request body",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	prev, replaced := h.global.Insert(key, req.Value)

	c.JSON(http.StatusOK, dto.SetContextEntryResponse{
		Key:      key,
		Value:    req.Value,
		Previous: prev,
		Replaced: replaced,
	})
}

// RemoveEntry handles DELETE /api/v1/context/:key
// Removes a key from the process-wide store.
func (h *ContextHandler) RemoveEntry(c *gin.Context) {
	key := c.Param("key")

	prev, removed := h.global.Remove(key)
	if !removed {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.ErrorCodeNotFound,
			"context key not found: "+key,
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	c.JSON(http.StatusOK, dto.RemoveContextEntryResponse{
		Key:      key,
		Previous: prev,
	})
}

// mergedEntries builds the key-sorted merged view of both stores. Local
// entries win on key collision, matching what the log handler emits.
func (h *ContextHandler) mergedEntries(c *gin.Context) []dto.ContextEntryResponse {
	merged := make(map[string]dto.ContextEntryResponse)

	for _, e := range h.global.Entries() {
		merged[e.Key] = dto.ContextEntryResponse{
			Key:   e.Key,
			Value: e.Value,
			Scope: dto.ScopeGlobal,
		}
	}

	for _, e := range mdc.Entries(c.Request.Context()) {
		merged[e.Key] = dto.ContextEntryResponse{
			Key:   e.Key,
			Value: e.Value,
			Scope: dto.ScopeLocal,
		}
	}

	entries := make([]dto.ContextEntryResponse, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return entries
}

// RegisterContextRoutes registers context routes on the given router group.
func (h *ContextHandler) RegisterContextRoutes(rg *gin.RouterGroup) {
	ctx := rg.Group("/context")
	ctx.GET("", h.ListEntries)
	ctx.GET("/:key", h.GetEntry)
	ctx.PUT("/:key", h.SetEntry)
	ctx.DELETE("/:key", h.RemoveEntry)
}
