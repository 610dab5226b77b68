package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds multipart uploads read into memory.
const maxUploadBytes = 32 << 20

type DataHandler struct {
	service *service.DataService
}

func NewDataHandler(service *service.DataService) *DataHandler {
	return &DataHandler{service: service}
}

func (h *DataHandler) GetProducts(c *gin.Context) {
	products, err := h.service.Products(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *DataHandler) GetDemand(c *gin.Context) {
	from, err := parseDateQuery(c, "from")
	if err != nil {
		respondError(c, "invalid from date", err)
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		respondError(c, "invalid to date", err)
		return
	}

	demand, err := h.service.DemandHistory(c.Request.Context(), strings.TrimSpace(c.Query("product_id")), from, to)
	if err != nil {
		respondError(c, "failed to fetch demand history", err)
		return
	}
	c.JSON(http.StatusOK, demand)
}

func parseDateQuery(c *gin.Context, param string) (time.Time, error) {
	value := strings.TrimSpace(c.Query(param))
	if value == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDemandDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", service.ErrInvalidInput, param, err)
	}
	return t, nil
}

func (h *DataHandler) GetSuppliers(c *gin.Context) {
	suppliers, err := h.service.Suppliers(c.Request.Context(), strings.TrimSpace(c.Query("product_id")))
	if err != nil {
		respondError(c, "failed to fetch suppliers", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *DataHandler) GetInventory(c *gin.Context) {
	inventory, err := h.service.Inventory(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch inventory", err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (h *DataHandler) LoadSynthetic(c *gin.Context) {
	result, err := h.service.LoadSynthetic(c.Request.Context())
	if err != nil {
		respondError(c, "failed to load synthetic data", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DataHandler) SyncProducts(c *gin.Context) {
	result, err := h.service.SyncProducts(c.Request.Context())
	if err != nil {
		respondError(c, "failed to sync products", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DataHandler) SyncDemand(c *gin.Context) {
	result, err := h.service.SyncDemand(c.Request.Context())
	if err != nil {
		respondError(c, "failed to sync demand data", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type salesProduct struct {
	ProductID string `json:"product_id" binding:"required"`
	Name      string `json:"name"`
}

type salesDemand struct {
	ProductID string  `json:"product_id" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	Demand    float64 `json:"demand" binding:"gte=0"`
}

type salesRequest struct {
	Products   []salesProduct `json:"products" binding:"required,dive"`
	DemandData []salesDemand  `json:"demand_data" binding:"dive"`
}

func (h *DataHandler) InsertSales(c *gin.Context) {
	var req salesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	products := make([]domain.Product, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, domain.Product{ProductID: p.ProductID, Name: p.Name})
	}
	demand := make([]domain.DemandRecord, 0, len(req.DemandData))
	for _, d := range req.DemandData {
		demand = append(demand, domain.DemandRecord{ProductID: d.ProductID, Date: d.Date, Demand: d.Demand})
	}

	result, err := h.service.InsertSalesData(c.Request.Context(), products, demand)
	if err != nil {
		respondError(c, "failed to insert sales data", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Upload forwards a sales file to the backend.
func (h *DataHandler) Upload(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}

	resp, err := h.service.UploadCSV(c.Request.Context(), name, data)
	if err != nil {
		respondError(c, "failed to upload file", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Import parses a sales file locally and replaces products and demand.
func (h *DataHandler) Import(c *gin.Context) {
	name, data, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := h.service.ImportSalesFile(c.Request.Context(), name, data)
	if err != nil {
		respondError(c, "failed to import file", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func readUpload(c *gin.Context) (string, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided", "details": err.Error()})
		return "", nil, false
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data", "details": err.Error()})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data", "details": err.Error()})
		return "", nil, false
	}
	return header.Filename, data, true
}
