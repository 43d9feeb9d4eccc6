package util

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// InitDir creates the parent directory of path, expanding environment variables first.
func InitDir(path string, mode fs.FileMode) error {
	return os.MkdirAll(filepath.Dir(os.ExpandEnv(path)), mode)
}

// CheckError prints err and exits the process when err is not nil. It is meant
// for setup failures before a command runs.
func CheckError(err error) {
	cobra.CheckErr(err)
}
