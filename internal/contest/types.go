package contest

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownType = errors.New("unknown contest type")

// Type selects both the scoring rule and what competitors may see.
type Type int

const (
	TypeNOI Type = iota
	TypeIOI
	TypeACM
)

func (t Type) String() string {
	switch t {
	case TypeNOI:
		return "noi"
	case TypeIOI:
		return "ioi"
	case TypeACM:
		return "acm"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts the stored discriminator into a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noi":
		return TypeNOI, nil
	case "ioi":
		return TypeIOI, nil
	case "acm":
		return TypeACM, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

func (t Type) MarshalText() ([]byte, error) {
	switch t {
	case TypeNOI, TypeIOI, TypeACM:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
