package meta

const (
	CLIName = "powerops"

	// DefaultDataSetExternalID is the data set bootstrap resources are written to
	// when neither a flag nor configuration names one.
	DefaultDataSetExternalID = "powerops:bootstrap"
)

// Empty type to represent the _type_ Version. Genesis is to support a key in a Context
type Key struct{}

var VersionKey = Key{}

var (
	// VERSION may be overridden by the linker.
	VERSION = "dev"
	// COMMIT may be overridden by the linker.
	COMMIT = "unknown"
)
