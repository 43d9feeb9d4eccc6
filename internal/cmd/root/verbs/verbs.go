package verbs

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	Apply   = VerbValue("apply")
	Dump    = VerbValue("dump")
	Plan    = VerbValue("plan")
	Version = VerbValue("version")
)

// Empty type to represent the _type_ Verb. Genesis is to support a key in a Context
type VerbKey struct{}

// Verb is a global instance of the VerbKey type
var Verb = VerbKey{}

// Will represent a specific Verb (plan, apply, dump)
type VerbValue string

func (v VerbValue) String() string {
	return string(v)
}

// NoPositionalArgs returns an Args validator that rejects positional arguments
// with a helpful message directing users to use the -f/--filename flag instead.
func NoPositionalArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q: use -f/--filename to specify the bootstrap configuration", args[0])
	}
	return nil
}
