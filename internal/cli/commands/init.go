package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapcheck/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a leapcheck.yaml configuration",
		Long: `Create a leapcheck.yaml configuration file with the default settings.

Use --example to also create a rules file and a matching CSV file with a
few failing rows, ready to run with 'leapcheck validate'.`,
		Example: `  # Initialize in current directory
  leapcheck init

  # Initialize with a working example
  leapcheck init --example

  # Initialize in a new directory
  leapcheck init my-checks --example

  # Force overwrite existing config
  leapcheck init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := NewCommandContext(cmd).Renderer
			if example {
				return runInitExample(r, dir, force)
			}
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example rules file and dataset")

	return cmd
}

// prepareInit creates dir and refuses to overwrite a configuration
// unless force is set.
func prepareInit(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	configPath := filepath.Join(dir, "leapcheck.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("leapcheck.yaml already exists. Use --force to overwrite")
	}
	return nil
}

func runInit(r *output.Renderer, dir string, force bool) error {
	if err := prepareInit(dir, force); err != nil {
		return err
	}
	if err := copyTemplate("minimal", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("minimal")
	for _, f := range files {
		r.StatusLine(f, "success", "")
	}

	r.Println("")
	r.Success("leapcheck initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Write a rules file (see 'leapcheck rules')")
	r.Println("  2. Check it with 'leapcheck check <file>'")
	r.Println("  3. Run 'leapcheck validate -r <rules> -d <data>'")

	return nil
}

func runInitExample(r *output.Renderer, dir string, force bool) error {
	if err := prepareInit(dir, force); err != nil {
		return err
	}
	if err := copyTemplate("example", dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles("example")
	groups := groupTemplateFiles(files)

	sections := []struct{ title, key string }{
		{"Configuration", "config"},
		{"Rules", "rules"},
		{"Data", "data"},
	}
	for i, s := range sections {
		if i > 0 {
			r.Println("")
		}
		r.Header(2, s.title)
		for _, f := range groups[s.key] {
			r.StatusLine(f, "success", "")
		}
	}

	r.Println("")
	r.Success("leapcheck initialized with an example!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  leapcheck check rules/people.rules")
	r.Println("  leapcheck validate -r rules/people.rules -d data/people.csv")
	r.Println("  leapcheck repl -r rules/people.rules -c age")

	return nil
}
