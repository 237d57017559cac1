package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"erdiagram/internal/diagram"
)

type schemaView struct {
	SchemaCode string `json:"schemaCode" yaml:"schemaCode"`
}

func (a *app) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the generated schema or apply an edited one",
	}
	cmd.AddCommand(a.schemaShowCommand(), a.schemaApplyCommand())
	return cmd
}

func (a *app) schemaShowCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the schema generated from the diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				code := s.Schema()
				if refresh {
					var err error
					if code, err = s.GenerateSchema(ctx); err != nil {
						return err
					}
				}
				return a.render(schemaView{SchemaCode: code}, writeLine(code))
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Regenerate instead of printing the stored schema")
	return cmd
}

func (a *app) schemaApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply FILE",
		Short: "Replace the diagram with the one parsed from edited schema text",
		Long:  `apply reads schema text from FILE, or from stdin when FILE is "-", and rebuilds the diagram from it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				if err := s.ApplySchemaEdit(ctx, code); err != nil {
					return err
				}
				return a.showDiagram(s)
			})
		},
	}
}

func (a *app) readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(a.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read schema file: %w", err)
	}
	return string(b), nil
}

func (a *app) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the diagram as Mermaid erDiagram text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				out, err := s.Preview(ctx)
				if err != nil {
					return err
				}
				return a.render(struct {
					Mermaid string `json:"mermaid" yaml:"mermaid"`
				}{out}, writeLine(out))
			})
		},
	}
}
