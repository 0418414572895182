package values

import (
	"encoding/json"
	"fmt"
)

// Similarity represents a cosine similarity score as a value object (-1.0 to 1.0)
type Similarity struct {
	value float64
}

// NewSimilarity creates a Similarity value object with range validation
func NewSimilarity(value float64) (Similarity, error) {
	if value < -1.0 || value > 1.0 {
		return Similarity{}, fmt.Errorf("similarity must be between -1.0 and 1.0, got %f", value)
	}
	return Similarity{value: value}, nil
}

// MustNewSimilarity creates a Similarity and panics on error (for constants/tests)
func MustNewSimilarity(value float64) Similarity {
	s, err := NewSimilarity(value)
	if err != nil {
		panic(err)
	}
	return s
}

// Float64 returns the raw similarity value
func (s Similarity) Float64() float64 {
	return s.value
}

// AtLeast reports whether the similarity clears the given threshold
func (s Similarity) AtLeast(threshold float64) bool {
	return s.value >= threshold
}

// LessThan reports whether the similarity is strictly below the given value
func (s Similarity) LessThan(other Similarity) bool {
	return s.value < other.value
}

func (s Similarity) String() string {
	return fmt.Sprintf("%.4f", s.value)
}

// MarshalJSON implements json.Marshaler
func (s Similarity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Similarity) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := NewSimilarity(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
