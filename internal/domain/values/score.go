package values

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Score represents a compliance score as a value object (0.0 to 100.0)
type Score struct {
	value float64
}

// NewScore creates a Score value object with range validation
func NewScore(value float64) (Score, error) {
	if value < 0.0 || value > 100.0 {
		return Score{}, fmt.Errorf("score must be between 0.0 and 100.0, got %f", value)
	}
	return Score{value: value}, nil
}

// MustNewScore creates a Score and panics on error (for constants/tests)
func MustNewScore(value float64) Score {
	s, err := NewScore(value)
	if err != nil {
		panic(err)
	}
	return s
}

// ZeroScore returns the zero score
func ZeroScore() Score {
	return Score{value: 0}
}

// NewScoreRounded creates a Score rounded half-up to one decimal place.
// Rounding goes through decimal arithmetic so binary float artifacts
// never leak into reported scores.
func NewScoreRounded(value float64) (Score, error) {
	rounded, _ := decimal.NewFromFloat(value).Round(1).Float64()
	return NewScore(rounded)
}

// Float64 returns the raw score value
func (s Score) Float64() float64 {
	return s.value
}

func (s Score) String() string {
	return decimal.NewFromFloat(s.value).Round(1).String()
}

// MarshalJSON implements json.Marshaler
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Score) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := NewScore(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
