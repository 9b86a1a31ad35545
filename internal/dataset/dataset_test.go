package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/internal/errors"
)

func TestNew(t *testing.T) {
	t.Run("valid series", func(t *testing.T) {
		ds, err := New(map[Field][]float64{
			FieldRevenue:   {100, 110, 121},
			FieldNetIncome: {10, 12, 15},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, ds.Periods())
		assert.True(t, ds.Has(FieldRevenue))
		assert.False(t, ds.Has(FieldCOGS))
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := New(map[Field][]float64{
			FieldRevenue:   {100, 110, 121},
			FieldNetIncome: {10, 12},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("empty series", func(t *testing.T) {
		_, err := New(map[Field][]float64{FieldRevenue: {}})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("no series", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestDataset_Immutability(t *testing.T) {
	input := []float64{100, 200}
	ds, err := New(map[Field][]float64{FieldRevenue: input})
	require.NoError(t, err)

	// Mutating the caller's slice must not affect the dataset
	input[0] = -1
	assert.Equal(t, []float64{100, 200}, ds.Series(FieldRevenue))

	// Mutating a returned series must not affect later reads
	out := ds.Series(FieldRevenue)
	out[1] = -1
	assert.Equal(t, []float64{100, 200}, ds.Series(FieldRevenue))
}

func TestDataset_Accessors(t *testing.T) {
	ds, err := New(map[Field][]float64{
		FieldRevenue: {100, 110, 121},
	})
	require.NoError(t, err)

	assert.Equal(t, 121.0, ds.Latest(FieldRevenue))
	assert.Equal(t, 0.0, ds.Latest(FieldCOGS))
	assert.Nil(t, ds.Series(FieldCOGS))
	assert.Equal(t, []float64{0, 0, 0}, ds.SeriesOr(FieldCapEx, 0))
	assert.Equal(t, []float64{100, 110, 121}, ds.SeriesOr(FieldRevenue, 0))
	assert.Equal(t, []Field{FieldRevenue}, ds.Fields())
}

func TestDataset_Require(t *testing.T) {
	ds, err := New(map[Field][]float64{
		FieldRevenue:   {100},
		FieldNetIncome: {10},
	})
	require.NoError(t, err)

	assert.NoError(t, ds.Require(FieldRevenue, FieldNetIncome))

	err = ds.Require(FieldRevenue, FieldTotalAssets)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "Total Assets")
}
