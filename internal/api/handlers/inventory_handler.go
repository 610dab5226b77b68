package handlers

import (
	"net/http"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

func (h *InventoryHandler) Status(c *gin.Context) {
	rows, err := h.service.Status(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch inventory status", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InventoryHandler) Optimize(c *gin.Context) {
	results, err := h.service.Optimize(c.Request.Context())
	if err != nil {
		respondError(c, "failed to optimize inventory", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *InventoryHandler) OptimizeRemote(c *gin.Context) {
	resp, err := h.service.OptimizeRemote(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch inventory optimization", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// stockRequest is a partial update; omitted fields keep their stored values.
type stockRequest struct {
	CurrentStock      *float64 `json:"current_stock" binding:"omitempty,gte=0"`
	WarehouseCapacity *float64 `json:"warehouse_capacity" binding:"omitempty,gt=0"`
	ReorderPoint      *float64 `json:"reorder_point" binding:"omitempty,gte=0"`
}

func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	inv, err := h.service.UpdateStock(c.Request.Context(), c.Param("product_id"), domain.StockUpdate{
		CurrentStock:      req.CurrentStock,
		WarehouseCapacity: req.WarehouseCapacity,
		ReorderPoint:      req.ReorderPoint,
	})
	if err != nil {
		respondError(c, "failed to update inventory", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
