package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		index int
		n     int
		want  int
		err   error
	}{
		{"first", FirstPage, 5, 0, nil},
		{"last", LastPage, 5, 4, nil},
		{"last of single page", LastPage, 1, 0, nil},
		{"second from end", -2, 5, 3, nil},
		{"beyond end", 5, 5, 0, ErrPageRange},
		{"before start", -6, 5, 0, ErrPageRange},
		{"empty document", FirstPage, 0, 0, ErrNoPages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.index, tt.n)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
