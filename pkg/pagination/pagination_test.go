package pagination

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginateDefaults(t *testing.T) {
	page := Paginate(seq(25), Params{})
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, seq(10), page.Data)
}

func TestPaginateBounds(t *testing.T) {
	items := seq(23)
	for limit := 1; limit <= 30; limit++ {
		for pg := 1; pg <= 30; pg++ {
			got := Paginate(items, Params{Page: pg, Limit: limit})
			require.LessOrEqual(t, len(got.Data), limit)
			require.Equal(t, (23+limit-1)/limit, got.TotalPages)
			if pg > got.TotalPages {
				require.NotNil(t, got.Data)
				require.Empty(t, got.Data)
			}
		}
	}
}

func TestPaginateLastPage(t *testing.T) {
	got := Paginate(seq(23), Params{Page: 3, Limit: 10})
	assert.Equal(t, []int{20, 21, 22}, got.Data)
}

func TestPaginateEmpty(t *testing.T) {
	got := Paginate([]string{}, Params{Page: 1, Limit: 5})
	assert.Equal(t, 0, got.TotalPages)
	assert.NotNil(t, got.Data)
}

func TestPaginateDoesNotAliasInput(t *testing.T) {
	items := seq(5)
	got := Paginate(items, Params{Page: 1, Limit: 5})
	got.Data[0] = 99
	assert.Equal(t, 0, items[0])
}

func TestFromQuery(t *testing.T) {
	p := FromQuery(url.Values{"page": {"2"}, "limit": {"abc"}})
	assert.Equal(t, Params{Page: 2, Limit: 10}, p)

	p = FromQuery(url.Values{"page": {"-4"}, "limit": {"50"}})
	assert.Equal(t, Params{Page: 1, Limit: 50}, p)
}

func TestPaginateHugeValues(t *testing.T) {
	got := Paginate(seq(5), Params{Page: 1, Limit: math.MaxInt})
	assert.Equal(t, 1, got.TotalPages)
	assert.Equal(t, seq(5), got.Data)

	require.NotPanics(t, func() {
		got = Paginate(seq(3), Params{Page: 3, Limit: 1 << 62})
	})
	assert.Equal(t, 1, got.TotalPages)
	assert.Empty(t, got.Data)

	got = Paginate(seq(3), Params{Page: math.MaxInt, Limit: math.MaxInt})
	assert.Empty(t, got.Data)

	p := FromQuery(url.Values{"page": {"9223372036854775807"}, "limit": {"9223372036854775807"}})
	require.NotPanics(t, func() { got = Paginate(seq(4), p) })
	assert.Equal(t, 1, got.TotalPages)
}
