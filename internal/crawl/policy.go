package crawl

import (
	"encoding"
	"fmt"
	"strings"
)

// Mode tells the crawler what to do with a link.
type Mode int

const (
	// ModeCheck checks the status of the link.
	ModeCheck Mode = iota
	// ModeIgnore skips the link entirely.
	ModeIgnore
	// ModeFollow checks the status of the link and collects the links of its body.
	ModeFollow
)

var (
	_ encoding.TextMarshaler   = ModeCheck
	_ encoding.TextUnmarshaler = (*Mode)(nil)
)

var modeNames = map[Mode]string{
	ModeCheck:  "check",
	ModeIgnore: "ignore",
	ModeFollow: "follow",
}

// String returns the name of the mode.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))

	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}

	return ModeCheck, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Scope is the relation of a link to the seed.
type Scope int

const (
	// ScopeInternal is the scope of the links on the same host as the seed.
	ScopeInternal Scope = iota
	// ScopeExternal is the scope of the links on other hosts.
	ScopeExternal
)

// String returns the name of the scope.
func (s Scope) String() string {
	if s == ScopeInternal {
		return "internal"
	}

	return "external"
}

// Policy decides the mode of the links in each scope. The zero value checks all the links.
type Policy struct {
	Internal Mode
	External Mode
}

// For returns the mode for a scope.
func (p Policy) For(s Scope) Mode {
	if s == ScopeInternal {
		return p.Internal
	}

	return p.External
}
