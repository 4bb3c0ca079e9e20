package mcmc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewData_RejectsRaggedRows(t *testing.T) {
	_, err := NewData([][]float64{{1, 2}, {1, 2, 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestNewData_EmptyIsValid(t *testing.T) {
	d, err := NewData(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Size())
}

func TestData_RowIsDefensiveCopy(t *testing.T) {
	d, err := NewData([][]float64{{1, 2}})
	require.NoError(t, err)
	row := d.Row(0)
	row[0] = 99
	assert.Equal(t, 1.0, d.Row(0)[0])
}
