package requirement

import (
	"fmt"
	"strings"
)

// Framework identifies a supported regulatory standard. The set is fixed
// at build time; catalogs for each member are validated at load.
type Framework int

const (
	FrameworkGDPR Framework = iota
	FrameworkHIPAA
	FrameworkCCPA
	FrameworkSOX
)

// AllFrameworks returns the supported frameworks in canonical order
func AllFrameworks() []Framework {
	return []Framework{FrameworkGDPR, FrameworkHIPAA, FrameworkCCPA, FrameworkSOX}
}

func (f Framework) String() string {
	switch f {
	case FrameworkGDPR:
		return "GDPR"
	case FrameworkHIPAA:
		return "HIPAA"
	case FrameworkCCPA:
		return "CCPA"
	case FrameworkSOX:
		return "SOX"
	default:
		return "unknown"
	}
}

// ParseFramework resolves a framework name, case-insensitively
func ParseFramework(s string) (Framework, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GDPR":
		return FrameworkGDPR, nil
	case "HIPAA":
		return FrameworkHIPAA, nil
	case "CCPA":
		return FrameworkCCPA, nil
	case "SOX":
		return FrameworkSOX, nil
	default:
		return 0, fmt.Errorf("unsupported framework: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler so Framework can key JSON maps
func (f Framework) MarshalText() ([]byte, error) {
	if f.String() == "unknown" {
		return nil, fmt.Errorf("cannot marshal unknown framework %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Framework) UnmarshalText(text []byte) error {
	parsed, err := ParseFramework(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
