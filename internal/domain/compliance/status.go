package compliance

// Status classifies a clause-requirement assessment outcome
type Status int

const (
	StatusCompliant Status = iota
	StatusPartial
	StatusNonCompliant
	StatusNotApplicable
)

func (s Status) String() string {
	switch s {
	case StatusCompliant:
		return "compliant"
	case StatusPartial:
		return "partial"
	case StatusNonCompliant:
		return "non_compliant"
	case StatusNotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Weight returns the status's contribution to a framework score
func (s Status) Weight() float64 {
	switch s {
	case StatusCompliant:
		return 1.0
	case StatusPartial:
		return 0.5
	default:
		return 0.0
	}
}

// RiskLevel classifies finding severity
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// DeriveRiskLevel maps (mandatory, status) onto a risk level:
// mandatory non-compliance is HIGH, mandatory partials and optional
// non-compliance are MEDIUM, everything else is LOW.
func DeriveRiskLevel(mandatory bool, status Status) RiskLevel {
	switch {
	case mandatory && status == StatusNonCompliant:
		return RiskHigh
	case mandatory && status == StatusPartial:
		return RiskMedium
	case !mandatory && status == StatusNonCompliant:
		return RiskMedium
	default:
		return RiskLow
	}
}
