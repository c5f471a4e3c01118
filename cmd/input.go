package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oakwood-commons/xmltab/pkg/settings"
)

// stdinName stands for the report when it arrives on stdin.
const stdinName = "-"

var stdinReader io.Reader = os.Stdin

// readInput reads the report from the file argument, or from stdin when it
// is piped. It returns errShowHelp when there is neither.
func readInput(args []string) (settings.InputSettings, []byte, error) {
	if len(args) > 0 && args[0] != stdinName {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return settings.InputSettings{}, nil, fmt.Errorf("read %s: %w", path, err)
		}
		return settings.InputSettings{Path: path, Name: filepath.Base(path)}, data, nil
	}
	if len(args) == 0 && !stdinIsPiped() {
		return settings.InputSettings{}, nil, errShowHelp
	}
	data, err := io.ReadAll(stdinReader)
	if err != nil {
		return settings.InputSettings{}, nil, fmt.Errorf("read stdin: %w", err)
	}
	return settings.InputSettings{Name: stdinName, FromStdin: true}, data, nil
}
