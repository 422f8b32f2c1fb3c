package fulfillment

import "github.com/ordelix/ordelix/internal/masterdata"

// Allocation is the outcome of reserving stock for an order.
type Allocation struct {
	IsPreOrder bool
	Movements  []StockMovement
}

// Allocate decides the pre-order flag and the stock decrements for qty units of product.
//
// Every BOM line is checked against the snapshot as it was before this order; any shortfall or
// missing material marks the whole order as a pre-order. Present materials are decremented
// regardless, so stock can go negative to record backlog. Missing materials are skipped. Repeated
// lines for the same material decrement cumulatively.
func Allocate(product masterdata.Product, materials masterdata.MaterialIndex, qty int) Allocation {
	var (
		alloc    Allocation
		position = make(map[string]int)
	)
	for _, line := range product.Materials {
		need := line.QuantityRequired * qty
		m, ok := materials[line.MaterialID]
		if !ok {
			alloc.IsPreOrder = true
			continue
		}
		if m.Quantity < need {
			alloc.IsPreOrder = true
		}
		if idx, seen := position[m.ID]; seen {
			alloc.Movements[idx].After -= need
			continue
		}
		position[m.ID] = len(alloc.Movements)
		alloc.Movements = append(alloc.Movements, StockMovement{
			MaterialID: m.ID,
			Before:     m.Quantity,
			After:      m.Quantity - need,
		})
	}
	return alloc
}

// RequiredMaterialIDs returns the distinct material ids of product in first-seen order.
func RequiredMaterialIDs(product masterdata.Product) []string {
	seen := make(map[string]struct{}, len(product.Materials))
	ids := make([]string, 0, len(product.Materials))
	for _, line := range product.Materials {
		if _, ok := seen[line.MaterialID]; ok {
			continue
		}
		seen[line.MaterialID] = struct{}{}
		ids = append(ids, line.MaterialID)
	}
	return ids
}
