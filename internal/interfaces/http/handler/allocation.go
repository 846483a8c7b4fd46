package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appalloc "github.com/erp/allocation/internal/application/allocation"
	"github.com/erp/allocation/internal/interfaces/http/dto"
	"github.com/erp/allocation/internal/interfaces/http/middleware"
)

// AllocationHandler handles allocation session endpoints
type AllocationHandler struct {
	BaseHandler
	service *appalloc.AllocationService
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(service *appalloc.AllocationService) *AllocationHandler {
	return &AllocationHandler{service: service}
}

// RegisterRoutes registers allocation session routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/allocation-sessions")
	{
		sessions.POST("", h.OpenSession)
		sessions.GET("/:id", h.GetSession)
		sessions.GET("/:id/locations", h.ListLocations)
		sessions.PUT("/:id/location", h.SelectLocation)
		sessions.PUT("/:id/items/:line_item_id", h.SetQuantity)
		sessions.POST("/:id/submit", h.Submit)
		sessions.DELETE("/:id", h.CloseSession)
	}
}

// OpenSession opens a new allocation session for an order
// POST /api/v1/allocation-sessions
func (h *AllocationHandler) OpenSession(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.OpenSession(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, view)
}

// GetSession returns the current state of a session
// GET /api/v1/allocation-sessions/:id
func (h *AllocationHandler) GetSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	view, err := h.service.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// ListLocations returns the stock locations selectable for the session
// GET /api/v1/allocation-sessions/:id/locations
func (h *AllocationHandler) ListLocations(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	options, err := h.service.ListLocations(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, options)
}

// SelectLocation changes the session's selected stock location
// PUT /api/v1/allocation-sessions/:id/location
func (h *AllocationHandler) SelectLocation(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req SelectLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.SelectLocation(c.Request.Context(), sessionID, req.LocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// SetQuantity changes the requested quantity for a line item
// PUT /api/v1/allocation-sessions/:id/items/:line_item_id
func (h *AllocationHandler) SetQuantity(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	lineItemID := c.Param("line_item_id")
	if lineItemID == "" {
		h.BadRequest(c, "line_item_id is required")
		return
	}

	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	view, err := h.service.SetQuantity(c.Request.Context(), sessionID, lineItemID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, view)
}

// Submit creates reservations for every line with a non-zero quantity
// POST /api/v1/allocation-sessions/:id/submit
func (h *AllocationHandler) Submit(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CloseSession closes and removes a session
// DELETE /api/v1/allocation-sessions/:id
func (h *AllocationHandler) CloseSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.service.CloseSession(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// sessionID parses the session ID path parameter, writing a 400 on failure
func (h *AllocationHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "session id must be a valid UUID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "session id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
