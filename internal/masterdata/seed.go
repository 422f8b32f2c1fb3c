package masterdata

import (
	"context"
	"fmt"
	"log/slog"
)

type demoMaterial struct {
	key string
	req CreateMaterialRequest
}

type demoProduct struct {
	req  CreateProductRequest
	bill map[string]int
}

var demoMaterials = []demoMaterial{
	{key: "clay", req: CreateMaterialRequest{Name: "Stoneware Clay (kg)", Quantity: 120, UnitPrice: 2.5}},
	{key: "glaze", req: CreateMaterialRequest{Name: "Celadon Glaze (ml)", Quantity: 800, UnitPrice: 0.04}},
	{key: "cord", req: CreateMaterialRequest{Name: "Waxed Cord (m)", Quantity: 8, UnitPrice: 0.6}},
	{key: "box", req: CreateMaterialRequest{Name: "Gift Box", Quantity: 40, UnitPrice: 1.2}},
}

var demoProducts = []demoProduct{
	{
		req:  CreateProductRequest{Name: "Celadon Mug", Description: "Wheel-thrown mug, 350ml.", LaborHours: 1.5, Complexity: 2},
		bill: map[string]int{"clay": 1, "glaze": 60, "box": 1},
	},
	{
		req:  CreateProductRequest{Name: "Hanging Planter", Description: "Small planter with macrame hanger.", LaborHours: 2.5, Complexity: 3},
		bill: map[string]int{"clay": 2, "glaze": 90, "cord": 3},
	},
}

// SeedDemoCatalog installs a starter catalog when no products and no materials exist.
// It reports whether anything was written.
func (s *Service) SeedDemoCatalog(ctx context.Context) (bool, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return false, err
	}
	materials, err := s.repo.ListMaterials(ctx)
	if err != nil {
		return false, err
	}
	if len(products) > 0 || len(materials) > 0 {
		return false, nil
	}

	ids := make(map[string]string, len(demoMaterials))
	for _, m := range demoMaterials {
		created, err := s.CreateMaterial(ctx, m.req)
		if err != nil {
			return false, fmt.Errorf("seed material %s: %w", m.key, err)
		}
		ids[m.key] = created.ID
	}
	for _, p := range demoProducts {
		req := p.req
		for _, m := range demoMaterials {
			qty, ok := p.bill[m.key]
			if !ok {
				continue
			}
			req.Materials = append(req.Materials, MaterialRequirementInput{MaterialID: ids[m.key], QuantityRequired: qty})
		}
		if _, err := s.CreateProduct(ctx, req); err != nil {
			return false, fmt.Errorf("seed product %s: %w", req.Name, err)
		}
	}
	s.logger.Info("seeded demo catalog", slog.Int("materials", len(demoMaterials)), slog.Int("products", len(demoProducts)))
	return true, nil
}
