package inventory

// Stats agrega el estado del inventario. Se recalcula en cada consulta.
type Stats struct {
	TotalProducts      int64 // productos distintos con al menos un registro activo
	TotalQuantity      int64
	LowStockProducts   int64 // registros con cantidad <= mínimo (incluye los que están en cero)
	OutOfStockProducts int64
	OverstockProducts  int64 // registros por encima del máximo; max_stock = 0 es "sin tope"
	TotalMovements     int64
}

// ComputeStats calcula las estadísticas sobre los registros activos.
func ComputeStats(views []RecordView, totalMovements int64) Stats {
	st := Stats{TotalMovements: totalMovements}
	products := make(map[string]struct{})
	for _, v := range views {
		if !v.Record.Active {
			continue
		}
		q := v.Record.Quantity
		products[v.Record.ProductID] = struct{}{}
		st.TotalQuantity += q
		if q <= v.Product.MinStock {
			st.LowStockProducts++
		}
		if q == 0 {
			st.OutOfStockProducts++
		}
		if v.Product.HasMaxStock() && q > v.Product.MaxStock {
			st.OverstockProducts++
		}
	}
	st.TotalProducts = int64(len(products))
	return st
}
