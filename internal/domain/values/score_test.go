package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScore(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{name: "zero", value: 0},
		{name: "full", value: 100},
		{name: "middle", value: 66.7},
		{name: "negative", value: -0.1, wantErr: true},
		{name: "above range", value: 100.01, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScore(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, s.Float64())
		})
	}
}

func TestNewScoreRounded(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "rounds half up", value: 83.35, want: 83.4},
		{name: "rounds down", value: 66.6666, want: 66.7},
		{name: "exact one decimal", value: 50.0, want: 50.0},
		{name: "float artifact", value: 0.1 + 0.2, want: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScoreRounded(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Float64())
		})
	}
}

func TestSimilarity_Range(t *testing.T) {
	_, err := NewSimilarity(1.5)
	assert.Error(t, err)

	_, err = NewSimilarity(-1.5)
	assert.Error(t, err)

	s, err := NewSimilarity(-1.0)
	require.NoError(t, err)
	assert.True(t, s.LessThan(MustNewSimilarity(0)))
	assert.False(t, s.AtLeast(0.3))
}

func TestConfidence_Range(t *testing.T) {
	_, err := NewConfidence(-0.01)
	assert.Error(t, err)

	_, err = NewConfidence(1.01)
	assert.Error(t, err)

	c, err := NewConfidence(0.75)
	require.NoError(t, err)
	assert.True(t, c.AtLeast(0.75))
	assert.False(t, c.AtLeast(0.76))
}

func TestValueJSONRoundTrip(t *testing.T) {
	type payload struct {
		Score      Score      `json:"score"`
		Similarity Similarity `json:"similarity"`
		Confidence Confidence `json:"confidence"`
	}

	in := payload{
		Score:      MustNewScore(83.4),
		Similarity: MustNewSimilarity(0.8123),
		Confidence: MustNewConfidence(0.9),
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	// Out-of-range wire values are rejected at the boundary
	var bad payload
	err = json.Unmarshal([]byte(`{"score":101,"similarity":0,"confidence":0}`), &bad)
	assert.Error(t, err)
}
