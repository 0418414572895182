package values

import (
	"encoding/json"
	"fmt"
)

// Confidence represents a classifier confidence as a value object (0.0 to 1.0)
type Confidence struct {
	value float64
}

// NewConfidence creates a Confidence value object with range validation
func NewConfidence(value float64) (Confidence, error) {
	if value < 0.0 || value > 1.0 {
		return Confidence{}, fmt.Errorf("confidence must be between 0.0 and 1.0, got %f", value)
	}
	return Confidence{value: value}, nil
}

// MustNewConfidence creates a Confidence and panics on error (for constants/tests)
func MustNewConfidence(value float64) Confidence {
	c, err := NewConfidence(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Float64 returns the raw confidence value
func (c Confidence) Float64() float64 {
	return c.value
}

// AtLeast reports whether the confidence clears the given threshold
func (c Confidence) AtLeast(threshold float64) bool {
	return c.value >= threshold
}

func (c Confidence) String() string {
	return fmt.Sprintf("%.2f", c.value)
}

// MarshalJSON implements json.Marshaler
func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := NewConfidence(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
