package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"erdiagram/internal/diagram"
)

func (a *app) attributeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attr",
		Aliases: []string{"attribute"},
		Short:   "Add, update and remove entity attributes",
	}
	cmd.AddCommand(a.attributeAddCommand(), a.attributeUpdateCommand(), a.attributeRemoveCommand())
	return cmd
}

type attributeFlags struct {
	name          string
	dataType      string
	primaryKey    bool
	foreignKey    bool
	unique        bool
	nullable      bool
	autoIncrement bool
	unsigned      bool
	defaultValue  string
	comment       string
}

func (f *attributeFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "Attribute name")
	flags.StringVar(&f.dataType, "type", "", "Data type, a known type such as String or a custom one such as varchar(255)")
	flags.BoolVar(&f.primaryKey, "pk", false, "Primary key (implies unique and not null)")
	flags.BoolVar(&f.foreignKey, "fk", false, "Foreign key")
	flags.BoolVar(&f.unique, "unique", false, "Unique")
	flags.BoolVar(&f.nullable, "nullable", true, "Nullable")
	flags.BoolVar(&f.autoIncrement, "auto-increment", false, "Auto increment")
	flags.BoolVar(&f.unsigned, "unsigned", false, "Unsigned")
	flags.StringVar(&f.defaultValue, "default", "", "Default value")
	flags.StringVar(&f.comment, "comment", "", "Comment")
}

// merge overlays the flags the user set onto in.
func (f *attributeFlags) merge(cmd *cobra.Command, in diagram.AttributeInput) diagram.AttributeInput {
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.Name = f.name
	}
	if flags.Changed("type") {
		in.DataType = diagram.ParseDataType(f.dataType)
	}
	if flags.Changed("pk") {
		in.IsPrimaryKey = f.primaryKey
	}
	if flags.Changed("fk") {
		in.IsForeignKey = f.foreignKey
	}
	if flags.Changed("unique") {
		in.IsUnique = f.unique
	}
	if flags.Changed("nullable") {
		in.IsNullable = f.nullable
	}
	if flags.Changed("auto-increment") {
		in.IsAutoIncrement = f.autoIncrement
	}
	if flags.Changed("unsigned") {
		in.IsUnsigned = f.unsigned
	}
	if flags.Changed("default") {
		in.DefaultValue = optional(f.defaultValue)
	}
	if flags.Changed("comment") {
		in.Comment = optional(f.comment)
	}
	return in
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func attributeInput(attr diagram.Attribute) diagram.AttributeInput {
	return diagram.AttributeInput{
		Name:            attr.Name,
		DataType:        attr.DataType,
		IsPrimaryKey:    attr.IsPrimaryKey,
		IsForeignKey:    attr.IsForeignKey,
		IsUnique:        attr.IsUnique,
		IsNullable:      attr.IsNullable,
		IsAutoIncrement: attr.IsAutoIncrement,
		IsUnsigned:      attr.IsUnsigned,
		DefaultValue:    attr.DefaultValue,
		Comment:         attr.Comment,
	}
}

func findAttribute(s *diagram.Store, entityID, attributeID string) (diagram.Attribute, error) {
	node, ok := s.Node(entityID)
	if !ok {
		return diagram.Attribute{}, fmt.Errorf("entity %s: %w", entityID, diagram.ErrNotFound)
	}
	for _, attr := range node.Data.Attributes {
		if attr.ID == attributeID {
			return attr, nil
		}
	}
	return diagram.Attribute{}, fmt.Errorf("attribute %s: %w", attributeID, diagram.ErrNotFound)
}

func (a *app) renderAttribute(attr diagram.Attribute) error {
	return a.render(attr, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		writeAttributeRow(tw, attr)
		return tw.Flush()
	})
}

func (a *app) attributeAddCommand() *cobra.Command {
	var f attributeFlags
	cmd := &cobra.Command{
		Use:   "add ENTITY_ID",
		Short: "Add an attribute to an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := f.merge(cmd, diagram.DefaultAttributeInput())
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				attr, err := s.CreateAttribute(ctx, args[0], in)
				if err != nil {
					return err
				}
				return a.renderAttribute(*attr)
			})
		},
	}
	f.bind(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) attributeUpdateCommand() *cobra.Command {
	var f attributeFlags
	cmd := &cobra.Command{
		Use:   "update ENTITY_ID ATTRIBUTE_ID",
		Short: "Change an attribute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, attributeID := args[0], args[1]
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				current, err := findAttribute(s, entityID, attributeID)
				if err != nil {
					return err
				}
				if err := s.UpdateAttribute(ctx, entityID, attributeID, f.merge(cmd, attributeInput(current))); err != nil {
					return err
				}
				updated, err := findAttribute(s, entityID, attributeID)
				if err != nil {
					return err
				}
				return a.renderAttribute(updated)
			})
		},
	}
	f.bind(cmd)
	return cmd
}

func (a *app) attributeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ENTITY_ID ATTRIBUTE_ID",
		Aliases: []string{"delete"},
		Short:   "Delete an attribute",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *diagram.Store) error {
				return s.DeleteAttribute(ctx, args[0], args[1])
			})
		},
	}
}
