package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/stock-orders-api/internal/domain/entity"
)

// Tipos y severidades de alerta.
const (
	AlertTypeLowStock   = "LOW_STOCK"
	AlertTypeOutOfStock = "OUT_OF_STOCK"

	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
)

// Estado de stock derivado de un registro (para listados).
const (
	StockStatusInStock    = "IN_STOCK"
	StockStatusLowStock   = "LOW_STOCK"
	StockStatusOutOfStock = "OUT_OF_STOCK"
)

// RecordView es un registro de inventario con los datos del catálogo que lo describen.
type RecordView struct {
	Record        entity.InventoryRecord
	Product       entity.Product
	WarehouseName string
}

// StockStatus deriva el estado de stock del registro contra el umbral mínimo del producto.
func (v RecordView) StockStatus() string {
	switch {
	case v.Record.Quantity == 0:
		return StockStatusOutOfStock
	case v.Record.Quantity <= v.Product.MinStock:
		return StockStatusLowStock
	}
	return StockStatusInStock
}

// Alert es una alerta de stock derivada; no se persiste.
type Alert struct {
	InventoryID     string
	ProductID       string
	ProductCode     string
	ProductName     string
	WarehouseID     string
	WarehouseName   string
	CurrentQuantity int64
	MinThreshold    int64
	AlertType       string
	Severity        string
	Message         string
}

// DeriveAlert devuelve la alerta del registro o ok=false si la cantidad supera el mínimo.
func DeriveAlert(v RecordView) (Alert, bool) {
	q, min := v.Record.Quantity, v.Product.MinStock
	if q > min {
		return Alert{}, false
	}
	a := Alert{
		InventoryID:     v.Record.ID,
		ProductID:       v.Record.ProductID,
		ProductCode:     v.Product.Code,
		ProductName:     v.Product.Name,
		WarehouseID:     v.Record.WarehouseID,
		WarehouseName:   v.WarehouseName,
		CurrentQuantity: q,
		MinThreshold:    min,
	}
	switch {
	case q == 0:
		a.AlertType = AlertTypeOutOfStock
		a.Severity = SeverityCritical
		a.Message = fmt.Sprintf("%s sin stock en %s", v.Product.Name, warehouseLabel(v))
	case q*2 <= min:
		a.AlertType = AlertTypeLowStock
		a.Severity = SeverityHigh
		a.Message = fmt.Sprintf("%s con stock bajo en %s (%d de mínimo %d)", v.Product.Name, warehouseLabel(v), q, min)
	default:
		a.AlertType = AlertTypeLowStock
		a.Severity = SeverityMedium
		a.Message = fmt.Sprintf("%s cerca del mínimo en %s (%d de mínimo %d)", v.Product.Name, warehouseLabel(v), q, min)
	}
	return a, true
}

func warehouseLabel(v RecordView) string {
	if v.WarehouseName != "" {
		return v.WarehouseName
	}
	return v.Record.WarehouseID
}

var severityRank = map[string]int{SeverityCritical: 0, SeverityHigh: 1, SeverityMedium: 2}

// DeriveAlerts calcula las alertas de los registros activos, ordenadas por severidad,
// luego menor cantidad y luego código de producto. limit <= 0 devuelve todas.
func DeriveAlerts(views []RecordView, limit int) []Alert {
	alerts := make([]Alert, 0)
	for _, v := range views {
		if !v.Record.Active {
			continue
		}
		if a, ok := DeriveAlert(v); ok {
			alerts = append(alerts, a)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank[alerts[i].Severity], severityRank[alerts[j].Severity]
		if ri != rj {
			return ri < rj
		}
		if alerts[i].CurrentQuantity != alerts[j].CurrentQuantity {
			return alerts[i].CurrentQuantity < alerts[j].CurrentQuantity
		}
		return alerts[i].ProductCode < alerts[j].ProductCode
	})
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}
