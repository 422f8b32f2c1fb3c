package masterdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedDemoCatalog(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seeded, err := svc.SeedDemoCatalog(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	require.Len(t, repo.materials, len(demoMaterials))
	require.Len(t, repo.products, len(demoProducts))

	for _, p := range repo.products {
		require.NotEmpty(t, p.Materials)
		for _, line := range p.Materials {
			_, ok := repo.materials[line.MaterialID]
			require.True(t, ok, "bill of materials references a seeded material")
		}
	}

	seeded, err = svc.SeedDemoCatalog(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	require.Len(t, repo.products, len(demoProducts))
}

func TestSeedDemoCatalogSkipsExistingMaterials(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Clay", Quantity: 5})
	require.NoError(t, err)

	seeded, err := svc.SeedDemoCatalog(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	require.Empty(t, repo.products)
}
