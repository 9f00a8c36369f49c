package volumes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func indexes(ls []Link) []int {
	out := make([]int, len(ls))
	for i, l := range ls {
		out[i] = l.Index
	}
	return out
}

func TestNumber(t *testing.T) {
	got := Number([]string{"a", "b", "c"})
	assert.Equal(t, []Link{{URL: "a", Index: 1}, {URL: "b", Index: 2}, {URL: "c", Index: 3}}, got)
}

func TestFilter(t *testing.T) {
	all := Number([]string{"a", "b", "c", "d", "e"})

	assert.Equal(t, []int{1, 2, 3, 4, 5}, indexes(Filter(all, "", "")))
	assert.Equal(t, []int{2, 3, 4}, indexes(Filter(all, "2-4", "")))
	assert.Equal(t, []int{4, 5}, indexes(Filter(all, "4-9", "")))
	assert.Equal(t, []int{5, 1, 3}, indexes(Filter(all, "", "5, 1,3,3,x,0,9")))
	assert.Equal(t, []int{2, 3}, indexes(Filter(all, "2-3", "1")))
}

func TestFilterRange_Invalid(t *testing.T) {
	all := Number([]string{"a", "b"})

	assert.Nil(t, FilterRange(all, "3-4"))
	assert.Nil(t, FilterRange(all, "2-1"))
	assert.Nil(t, FilterRange(all, "x-2"))
	assert.Nil(t, FilterRange(all, "1"))
}
