package service

import (
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
)

const (
	syntheticHistoryDays = 90
	syntheticSpikeChance = 0.05
	syntheticSpikeFactor = 2.5
)

var syntheticProducts = []domain.Product{
	{ProductID: "P001", Name: "Laptop Computer", Category: domain.StringPtr("Electronics")},
	{ProductID: "P002", Name: "Office Chair", Category: domain.StringPtr("Furniture")},
	{ProductID: "P003", Name: "Wireless Mouse", Category: domain.StringPtr("Electronics")},
	{ProductID: "P004", Name: "Desk Lamp", Category: domain.StringPtr("Furniture")},
	{ProductID: "P005", Name: "Smartphone", Category: domain.StringPtr("Electronics")},
}

var syntheticSuppliers = []domain.Supplier{
	{SupplierID: "S001", Name: "TechCorp", PricePerUnit: 850, LeadTime: 7, Reliability: 0.95, ProductID: "P001"},
	{SupplierID: "S002", Name: "ElectroSupply", PricePerUnit: 820, LeadTime: 10, Reliability: 0.88, ProductID: "P001"},
	{SupplierID: "S003", Name: "FurniturePlus", PricePerUnit: 120, LeadTime: 5, Reliability: 0.92, ProductID: "P002"},
	{SupplierID: "S004", Name: "OfficeWorld", PricePerUnit: 135, LeadTime: 8, Reliability: 0.85, ProductID: "P002"},
	{SupplierID: "S005", Name: "GadgetHub", PricePerUnit: 25, LeadTime: 3, Reliability: 0.98, ProductID: "P003"},
	{SupplierID: "S006", Name: "TechAccessories", PricePerUnit: 22, LeadTime: 6, Reliability: 0.90, ProductID: "P003"},
	{SupplierID: "S007", Name: "LightingCo", PricePerUnit: 45, LeadTime: 4, Reliability: 0.93, ProductID: "P004"},
	{SupplierID: "S008", Name: "HomeDecor", PricePerUnit: 52, LeadTime: 7, Reliability: 0.87, ProductID: "P004"},
	{SupplierID: "S009", Name: "MobileTech", PricePerUnit: 650, LeadTime: 12, Reliability: 0.91, ProductID: "P005"},
	{SupplierID: "S010", Name: "PhoneWorld", PricePerUnit: 680, LeadTime: 8, Reliability: 0.94, ProductID: "P005"},
}

var syntheticInventory = []domain.InventoryRecord{
	{ProductID: "P001", CurrentStock: 45, WarehouseCapacity: 200, ReorderPoint: domain.Float64Ptr(30)},
	{ProductID: "P002", CurrentStock: 78, WarehouseCapacity: 150, ReorderPoint: domain.Float64Ptr(25)},
	{ProductID: "P003", CurrentStock: 120, WarehouseCapacity: 500, ReorderPoint: domain.Float64Ptr(50)},
	{ProductID: "P004", CurrentStock: 32, WarehouseCapacity: 100, ReorderPoint: domain.Float64Ptr(20)},
	{ProductID: "P005", CurrentStock: 18, WarehouseCapacity: 80, ReorderPoint: domain.Float64Ptr(15)},
}

// SyntheticDataset builds the demo dataset: five products with demand for
// today and the 90 days before it, two suppliers per product and one
// inventory row per product. Demand is higher on weekdays and for
// electronics, varies by ±30% and spikes 2.5x on about 5% of days.
func SyntheticDataset(today time.Time, rng *rand.Rand) domain.Dataset {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	demand := make([]domain.DemandRecord, 0, (syntheticHistoryDays+1)*len(syntheticProducts))
	for i := syntheticHistoryDays; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		for _, p := range syntheticProducts {
			demand = append(demand, domain.DemandRecord{
				ProductID: p.ProductID,
				Date:      date.Format(domain.DemandDateLayout),
				Demand:    syntheticDemand(p, date.Weekday(), rng),
			})
		}
	}

	ds := domain.Dataset{
		Products:  make([]domain.Product, len(syntheticProducts)),
		Demand:    demand,
		Suppliers: append([]domain.Supplier(nil), syntheticSuppliers...),
		Inventory: make([]domain.InventoryRecord, len(syntheticInventory)),
	}
	for i, p := range syntheticProducts {
		p.Category = domain.StringPtr(*p.Category)
		ds.Products[i] = p
	}
	for i, inv := range syntheticInventory {
		inv.ReorderPoint = domain.Float64Ptr(*inv.ReorderPoint)
		ds.Inventory[i] = inv
	}
	return ds
}

func syntheticDemand(p domain.Product, day time.Weekday, rng *rand.Rand) float64 {
	base := 50.0
	if p.Category != nil && *p.Category == "Electronics" {
		base = 80
	}

	weekday := 0.8
	if day >= time.Monday && day <= time.Friday {
		weekday = 1.2
	}

	variation := 0.7 + rng.Float64()*0.6
	spike := 1.0
	if rng.Float64() < syntheticSpikeChance {
		spike = syntheticSpikeFactor
	}
	return math.Round(base * weekday * variation * spike)
}
