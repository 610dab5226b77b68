package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

// ErrMissingColumn is returned when a sales file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// SalesData is the catalog and demand history parsed from sales files.
type SalesData struct {
	Products []domain.Product
	Demand   []domain.DemandRecord
}

type demandKey struct {
	productID string
	date      string
}

var columnAliases = map[string]string{
	"product_id":   "product_id",
	"productid":    "product_id",
	"sku":          "product_id",
	"product_name": "product_name",
	"name":         "product_name",
	"date":         "date",
	"order_date":   "date",
	"demand":       "demand",
	"quantity":     "demand",
	"qty":          "demand",
}

var requiredColumns = []string{"product_id", "date", "demand"}

// ParseSalesCSV reads product_id,product_name,date,demand rows. Header names
// are matched case-insensitively. Rows for the same product and date are
// summed. Products keep the order of their first appearance and take the
// first non-empty name seen, falling back to the product id.
func ParseSalesCSV(r io.Reader) (*SalesData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			if _, dup := cols[canonical]; !dup {
				cols[canonical] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := cols[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	acc := newAccumulator()
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		get := func(col string) string {
			if idx, ok := cols[col]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		productID := get("product_id")
		if productID == "" {
			continue
		}
		line, _ := reader.FieldPos(0)

		date, err := domain.ParseDemandDate(get("date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		demand, err := strconv.ParseFloat(get("demand"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid demand %q", line, get("demand"))
		}

		acc.add(productID, get("product_name"), date.Format(domain.DemandDateLayout), demand)
	}

	return acc.result(), nil
}

type accumulator struct {
	products   []domain.Product
	productIdx map[string]int
	demand     []domain.DemandRecord
	demandIdx  map[demandKey]int
}

func newAccumulator() *accumulator {
	return &accumulator{
		productIdx: make(map[string]int),
		demandIdx:  make(map[demandKey]int),
	}
}

func (a *accumulator) add(productID, name, date string, demand float64) {
	a.addProduct(productID, name)
	a.addDemand(productID, date, demand)
}

func (a *accumulator) addProduct(productID, name string) {
	if i, ok := a.productIdx[productID]; !ok {
		a.productIdx[productID] = len(a.products)
		a.products = append(a.products, domain.Product{ProductID: productID, Name: name})
	} else if a.products[i].Name == "" {
		a.products[i].Name = name
	}
}

func (a *accumulator) addDemand(productID, date string, demand float64) {
	key := demandKey{productID: productID, date: date}
	if i, ok := a.demandIdx[key]; ok {
		a.demand[i].Demand += demand
		return
	}
	a.demandIdx[key] = len(a.demand)
	a.demand = append(a.demand, domain.DemandRecord{ProductID: productID, Date: date, Demand: demand})
}

func (a *accumulator) merge(d *SalesData) {
	for _, p := range d.Products {
		a.addProduct(p.ProductID, p.Name)
	}
	for _, rec := range d.Demand {
		a.addDemand(rec.ProductID, rec.Date, rec.Demand)
	}
}

func (a *accumulator) result() *SalesData {
	products := make([]domain.Product, len(a.products))
	for i, p := range a.products {
		if p.Name == "" {
			p.Name = p.ProductID
		}
		products[i] = p
	}

	demand := append(make([]domain.DemandRecord, 0, len(a.demand)), a.demand...)
	return &SalesData{Products: products, Demand: demand}
}
