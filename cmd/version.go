package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/xmltab/pkg/settings"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print xmltab version",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(settings.VersionInformation.String()) //nolint:forbidigo
		return nil
	},
}
