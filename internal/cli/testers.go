package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/commitleak/internal/detect"
)

var testersCmd = &cobra.Command{
	Use:   "testers",
	Short: "List format testers and the keywords they match",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		registry, err := detect.NewRegistry(cfg.Keywords)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Keywords: %s\n\n", strings.Join(registry.Keywords(), ", "))
		for _, t := range registry.Testers() {
			fmt.Fprintf(out, "%s:\n", t.Name())
			fmt.Fprintf(out, "  extensions: %s\n", strings.Join(t.Class().Extensions, ", "))
		}
		return nil
	},
}
