package main

import (
	"fmt"
	"os"

	"github.com/oakwood-commons/xmltab/cmd"
	"github.com/oakwood-commons/xmltab/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitCode = cmd.ExitCode(err)
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
