package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

func validStalls() []model.Stall {
	return []model.Stall{
		{ID: 3, Name: "B-1", Size: model.SizeLarge, FloorRow: 1, FloorCol: 0},
		{ID: 1, Name: "A-1", Size: model.SizeSmall, FloorRow: 0, FloorCol: 0},
		{ID: 2, Name: "A-2", Size: model.SizeMedium, FloorRow: 0, FloorCol: 1},
	}
}

func TestNewRejectsBadStalls(t *testing.T) {
	cases := []struct {
		name   string
		stalls []model.Stall
	}{
		{"zero id", []model.Stall{{ID: 0, Name: "X", Size: model.SizeSmall}}},
		{"invalid size", []model.Stall{{ID: 1, Name: "X", Size: "gigantic"}}},
		{"duplicate id", []model.Stall{
			{ID: 1, Name: "X", Size: model.SizeSmall},
			{ID: 1, Name: "Y", Size: model.SizeSmall},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.stalls)
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	reg, err := New(validStalls())
	require.NoError(t, err)

	s, ok := reg.Get(2)
	require.True(t, ok)
	assert.Equal(t, "A-2", s.Name)

	_, ok = reg.Get(99)
	assert.False(t, ok)
}

func TestListFloorOrder(t *testing.T) {
	reg, err := New(validStalls())
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{list[0].ID, list[1].ID, list[2].ID})
}

func TestListReturnsCopy(t *testing.T) {
	reg, err := New(validStalls())
	require.NoError(t, err)

	list := reg.List()
	list[0].Name = "mutated"

	fresh := reg.List()
	assert.Equal(t, "A-1", fresh[0].Name)
}
