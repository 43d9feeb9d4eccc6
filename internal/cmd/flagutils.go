package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// FlagEnum is a pflag.Value restricted to a fixed set of strings.
type FlagEnum struct {
	Allowed []string
	Value   string
}

func NewEnum(allowed []string, d string) *FlagEnum {
	return &FlagEnum{
		Allowed: allowed,
		Value:   d,
	}
}

func (a FlagEnum) String() string {
	return a.Value
}

func (a *FlagEnum) Set(p string) error {
	if !slices.Contains(a.Allowed, p) {
		return fmt.Errorf("invalid value %q, must be one of %v", p, a.Allowed)
	}
	a.Value = p
	return nil
}

func (a *FlagEnum) Type() string {
	return "string"
}

// EnumUsage appends the config path and allowed values to a flag description.
func EnumUsage(desc, configPath string, e *FlagEnum) string {
	return fmt.Sprintf("%s\n- Config path: [ %s ]\n- Allowed    : [ %s ]",
		desc, configPath, strings.Join(e.Allowed, "|"))
}

var _ pflag.Value = (*FlagEnum)(nil)
