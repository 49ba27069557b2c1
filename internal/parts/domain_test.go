package parts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLowStock(t *testing.T) {
	require.True(t, Part{StockQuantity: 2, MinimumStock: 5}.LowStock())
	require.True(t, Part{StockQuantity: 5, MinimumStock: 5}.LowStock())
	require.False(t, Part{StockQuantity: 6, MinimumStock: 5}.LowStock())
	require.True(t, Part{StockQuantity: 0, MinimumStock: 0}.LowStock())
}
