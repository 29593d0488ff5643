package util

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	require.Equal(t, []string{"1", "2", "3"}, Map([]int{1, 2, 3}, strconv.Itoa))
	require.Empty(t, Map([]int{}, strconv.Itoa))
}

func TestDedupe(t *testing.T) {
	type signer struct {
		key  string
		name string
	}
	in := []signer{{"a", "first"}, {"b", "second"}, {"a", "dup"}, {"c", "third"}, {"b", "dup"}}
	out := Dedupe(in, func(s signer) string { return s.key })
	require.Equal(t, []signer{{"a", "first"}, {"b", "second"}, {"c", "third"}}, out)
}

func TestCartesian(t *testing.T) {
	tests := []struct {
		name string
		sets [][]int
		want [][]int
	}{
		{name: "no sets", sets: nil, want: nil},
		{name: "single set", sets: [][]int{{1, 2}}, want: [][]int{{1}, {2}}},
		{
			name: "two sets",
			sets: [][]int{{1, 2}, {3, 4, 5}},
			want: [][]int{{1, 3}, {1, 4}, {1, 5}, {2, 3}, {2, 4}, {2, 5}},
		},
		{name: "empty set", sets: [][]int{{1, 2}, {}}, want: [][]int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Cartesian(tt.sets...))
		})
	}
}
