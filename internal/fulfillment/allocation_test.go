package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ordelix/ordelix/internal/masterdata"
)

func TestAllocate(t *testing.T) {
	materials := masterdata.IndexMaterials([]masterdata.Material{
		{ID: "a", Quantity: 10},
		{ID: "b", Quantity: 4},
	})

	cases := []struct {
		name      string
		lines     []masterdata.MaterialRequirement
		qty       int
		preOrder  bool
		movements []StockMovement
	}{
		{
			name:      "sufficient",
			lines:     []masterdata.MaterialRequirement{{MaterialID: "a", QuantityRequired: 2}, {MaterialID: "b", QuantityRequired: 1}},
			qty:       4,
			movements: []StockMovement{{MaterialID: "a", Before: 10, After: 2}, {MaterialID: "b", Before: 4, After: 0}},
		},
		{
			name:      "one short",
			lines:     []masterdata.MaterialRequirement{{MaterialID: "a", QuantityRequired: 1}, {MaterialID: "b", QuantityRequired: 1}},
			qty:       5,
			preOrder:  true,
			movements: []StockMovement{{MaterialID: "a", Before: 10, After: 5}, {MaterialID: "b", Before: 4, After: -1}},
		},
		{
			name:      "duplicate lines checked independently",
			lines:     []masterdata.MaterialRequirement{{MaterialID: "b", QuantityRequired: 3}, {MaterialID: "b", QuantityRequired: 3}},
			qty:       1,
			movements: []StockMovement{{MaterialID: "b", Before: 4, After: -2}},
		},
		{
			name:      "missing material skipped",
			lines:     []masterdata.MaterialRequirement{{MaterialID: "zz", QuantityRequired: 1}},
			qty:       1,
			preOrder:  true,
			movements: nil,
		},
		{
			name:  "empty bom",
			lines: nil,
			qty:   9,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alloc := Allocate(masterdata.Product{Materials: tc.lines}, materials, tc.qty)
			require.Equal(t, tc.preOrder, alloc.IsPreOrder)
			require.Equal(t, tc.movements, alloc.Movements)
		})
	}
}

func TestRequiredMaterialIDs(t *testing.T) {
	product := masterdata.Product{Materials: []masterdata.MaterialRequirement{
		{MaterialID: "b"}, {MaterialID: "a"}, {MaterialID: "b"},
	}}
	require.Equal(t, []string{"b", "a"}, RequiredMaterialIDs(product))
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	_, err := ParseStatus("archived")
	require.ErrorIs(t, err, ErrInvalidStatus)
	require.True(t, StatusShipped.Fulfilled())
	require.False(t, StatusProcessing.Fulfilled())
}
