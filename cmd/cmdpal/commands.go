package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"cmdpal/internal/config"
	"cmdpal/internal/ui"
)

var (
	forceInit bool
	noPager   bool
)

var initCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Write the default palette to a file",
	Long: `Write the built-in palette as TOML so it can be edited.

Without FILE the palette goes to the --config path, or to the default
location when --config is not set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		svc := config.NewConfigService(path)

		if _, err := os.Stat(svc.Path()); err == nil && !forceInit {
			return errors.WithHint(
				errors.Newf("%s already exists", svc.Path()),
				"pass --force to overwrite it")
		}
		if err := svc.Save(config.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", svc.Path())
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the palette's groups and items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfigService(configPath).Load()
		if err != nil {
			return err
		}
		out := renderList(cfg)

		// Only page when a person is looking
		if noPager || !isatty.IsTerminal(os.Stdout.Fd()) {
			_, err := fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		}
		return ui.ShowInPager(out)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "overwrite an existing file")
	listCmd.Flags().BoolVar(&noPager, "no-pager", false, "print without paging")
}

// renderList flattens the palette into one line per item, grouped under
// their headings in file order. Ungrouped items come first.
func renderList(cfg *config.Config) string {
	byGroup := make(map[string][]config.ItemConfig)
	for _, it := range cfg.Items {
		byGroup[it.Group] = append(byGroup[it.Group], it)
	}

	var b strings.Builder
	writeItems := func(items []config.ItemConfig, indent string) {
		for _, it := range items {
			line := indent + it.Text
			if len(it.Keywords) > 0 {
				line += " [" + strings.Join(it.Keywords, ", ") + "]"
			}
			if it.Disabled {
				line += " (disabled)"
			}
			b.WriteString(line + "\t" + it.Output() + "\n")
		}
	}

	writeItems(byGroup[""], "")
	for _, g := range cfg.Groups {
		heading := g.Heading
		if heading == "" {
			heading = g.ID
		}
		b.WriteString(heading + "\n")
		writeItems(byGroup[g.ID], "  ")
	}
	return b.String()
}
