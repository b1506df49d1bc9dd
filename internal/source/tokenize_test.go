package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Run("splits rows and cells", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader("a,b,c\nd,e,f\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"a", "b", "c"}, rows[0])
		assert.Equal(t, []string{"d", "e", "f"}, rows[1])
	})

	t.Run("allows jagged rows", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader("总金额,30000\n代码,中文名,持仓数量,成本价\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Len(t, rows[0], 2)
		assert.Len(t, rows[1], 4)
	})

	t.Run("preserves quoted commas", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader(`AAPL,"Apple, Inc","1,234"`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Apple, Inc", rows[0][1])
		assert.Equal(t, "1,234", rows[0][2])
	})

	t.Run("tolerates stray quotes", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader("科技,\"80%\n现金,20%\n"))
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	})

	t.Run("keeps rows of empty cells", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader("AAPL,100\n,,\nMSFT,30\n"))
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "", rows[1][0])
	})

	t.Run("empty input yields no rows", func(t *testing.T) {
		rows, err := Tokenize(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
