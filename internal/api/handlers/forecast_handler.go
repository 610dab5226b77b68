package handlers

import (
	"net/http"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

func (h *ForecastHandler) List(c *gin.Context) {
	forecasts, err := h.service.List(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, "failed to fetch forecasts", err)
		return
	}
	c.JSON(http.StatusOK, forecasts)
}

func (h *ForecastHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, "failed to generate forecast", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) History(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, "failed to fetch demand history", err)
		return
	}
	c.JSON(http.StatusOK, history)
}
