package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/service"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

// InventoryHandler exposes inventory catalog and sale endpoints.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler constructs InventoryHandler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// List godoc
// @Summary List inventory items
// @Tags Inventory
// @Produce json
// @Param siteId query string false "Filter by site"
// @Param search query string false "Search by name or SKU"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var filter models.InventoryFilter
	filter.SiteID = c.Query("siteId")
	filter.Search = c.Query("search")
	if v := c.Query("active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			filter.Active = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	items, pagination, err := h.inventory.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get an inventory item
// @Tags Inventory
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Router /inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param payload body service.CreateItemRequest true "Item payload"
// @Success 201 {object} response.Envelope
// @Router /inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.UpdateItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Router /inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Sell godoc
// @Summary Sell inventory to a student
// @Tags Inventory
// @Accept json
// @Produce json
// @Param payload body service.SellRequest true "Sale payload"
// @Success 200 {object} response.Envelope
// @Router /inventory/sell [post]
func (h *InventoryHandler) Sell(c *gin.Context) {
	var req service.SellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.inventory.Sell(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Operation(c, result)
}

// Restock godoc
// @Summary Add stock to an inventory item
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param payload body service.RestockRequest true "Restock payload"
// @Success 200 {object} response.Envelope
// @Router /inventory/{id}/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req service.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.inventory.Restock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Operation(c, result)
}

// Sales godoc
// @Summary List recorded sales
// @Tags Inventory
// @Produce json
// @Param itemId query string false "Filter by item"
// @Param studentId query string false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /inventory/sales [get]
func (h *InventoryHandler) Sales(c *gin.Context) {
	sales, err := h.inventory.ListSales(c.Request.Context(), c.Query("itemId"), c.Query("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sales, nil)
}
