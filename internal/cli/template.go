package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/etiket/pkg/errors"
	"github.com/matzehuels/etiket/pkg/label/grid"
	"github.com/matzehuels/etiket/pkg/label/template"
)

// templateCommand creates the template management command.
func (c *CLI) templateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Show, validate or create label templates",
	}

	cmd.AddCommand(c.templateShowCommand())
	cmd.AddCommand(c.templateValidateCommand())
	cmd.AddCommand(c.templateInitCommand())

	return cmd
}

// templateShowCommand creates the "template show" subcommand.
func (c *CLI) templateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the active template as TOML",
		Long:  `Show prints the given template file, the configured template or the built-in product label.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			tmpl, err := c.loadTemplate(path)
			if err != nil {
				return err
			}
			return template.WriteTOML(os.Stdout, tmpl)
		},
	}
}

// templateValidateCommand creates the "template validate" subcommand.
func (c *CLI) templateValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a template and report cells that do not fit the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := template.Load(args[0])
			if err != nil {
				return err
			}
			if err := tmpl.Validate(); err != nil {
				return err
			}

			p := grid.Pack(tmpl)
			summarizePlacement(tmpl, p)
			if len(p.Defects) > 0 {
				for _, d := range p.Defects {
					printWarning("%s: %s", d.CellID, d.Message)
				}
				return errors.New(errors.ErrCodeInvalidTemplate, "%d cell(s) do not fit the grid", len(p.Defects))
			}
			printSuccess("Template %s is valid", args[0])
			return nil
		},
	}
}

// templateInitCommand creates the "template init" subcommand.
func (c *CLI) templateInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the built-in product label as a starting template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "etiket.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := errors.ValidatePath(path); err != nil {
				return err
			}
			if !strings.HasSuffix(path, ".toml") {
				return errors.New(errors.ErrCodeInvalidPath, "template file must end in .toml")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := template.WriteTOML(&buf, template.Default()); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return err
			}

			printSuccess("Wrote template")
			printFile(path)
			printNextStep("Render with it", "etiket render rows.json -t "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// summarizePlacement prints template dimensions and bound fields.
func summarizePlacement(t template.Template, p grid.Placement) {
	name := t.Name
	if name == "" {
		name = "(unnamed)"
	}
	printKeyValue("Name", name)
	printKeyValue("Grid", fmt.Sprintf("%d columns × %d rows", p.Width, p.Rows))
	printKeyValue("Cells", fmt.Sprintf("%d placed, %d padding", p.RealCells(), len(p.Cells)-p.RealCells()))
	if fields := t.Fields(); len(fields) > 0 {
		printKeyValue("Fields", StyleHighlight.Render(strings.Join(fields, ", ")))
	}
}
