package values

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		vector  []float64
		wantErr string
	}{
		{
			name:   "valid vector",
			vector: []float64{0.1, -0.2, 0.3},
		},
		{
			name:    "empty vector",
			vector:  []float64{},
			wantErr: "cannot be empty",
		},
		{
			name:    "nil vector",
			vector:  nil,
			wantErr: "cannot be empty",
		},
		{
			name:    "NaN component",
			vector:  []float64{0.1, math.NaN()},
			wantErr: "not finite",
		},
		{
			name:    "infinite component",
			vector:  []float64{math.Inf(1)},
			wantErr: "not finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEmbedding(tt.vector)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.vector), e.Dimension())
			assert.False(t, e.IsZero())
		})
	}
}

func TestEmbedding_DefensiveCopy(t *testing.T) {
	src := []float64{1, 2, 3}
	e := MustNewEmbedding(src)

	src[0] = 99
	assert.Equal(t, []float64{1, 2, 3}, e.Vector())

	out := e.Vector()
	out[1] = 99
	assert.Equal(t, []float64{1, 2, 3}, e.Vector())
}

func TestEmbedding_CosineSimilarity(t *testing.T) {
	tests := []struct {
		name    string
		a       []float64
		b       []float64
		want    float64
		wantErr string
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "opposite vectors",
			a:    []float64{1, 0},
			b:    []float64{-1, 0},
			want: -1.0,
		},
		{
			name: "zero magnitude yields zero",
			a:    []float64{0, 0},
			b:    []float64{1, 1},
			want: 0.0,
		},
		{
			name:    "dimension mismatch",
			a:       []float64{1, 2},
			b:       []float64{1, 2, 3},
			wantErr: "dimension mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := MustNewEmbedding(tt.a).CosineSimilarity(MustNewEmbedding(tt.b))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, sim.Float64(), 1e-9)
		})
	}
}

func TestEmbedding_CosineSimilarity_AbsentEmbedding(t *testing.T) {
	var absent Embedding
	present := MustNewEmbedding([]float64{1, 2})

	_, err := absent.CosineSimilarity(present)
	assert.Error(t, err)

	_, err = present.CosineSimilarity(absent)
	assert.Error(t, err)
}
