package cmds

import (
	"brandtheme/internal/types"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newFontCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "font",
		Short: "Maintain a tenant's font variants",
	}

	var (
		slot, family, file, style string
		weight                    int
	)
	upsert := &cobra.Command{
		Use:   "upsert <tenant>",
		Short: "Add a variant, or replace the file of the variant with the same weight and style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openWriter(cmd.Context())
			if err != nil {
				return err
			}
			replaced, err := adapter.UpsertFontVariant(cmd.Context(), args[0], slot, family,
				types.FontVariant{File: file, Weight: weight, Style: style})
			if err != nil {
				return err
			}
			verb := "added"
			if replaced {
				verb = "replaced"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %d %s variant\n", verb, slot, weight, style)
			return nil
		},
	}
	upsert.Flags().StringVar(&slot, "slot", types.FontSlotPrimary, "font slot: primary|secondary")
	upsert.Flags().StringVar(&family, "family", "", "family name (required when creating the secondary family)")
	upsert.Flags().StringVar(&file, "file", "", "font file name relative to the tenant's fonts directory")
	upsert.Flags().IntVar(&weight, "weight", 400, "font weight (100-900)")
	upsert.Flags().StringVar(&style, "style", types.FontStyleNormal, "font style: normal|italic")
	_ = upsert.MarkFlagRequired("file")

	var (
		delSlot, delStyle string
		delWeight         int
	)
	del := &cobra.Command{
		Use:   "delete <tenant>",
		Short: "Remove the variant with the given weight and style",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openWriter(cmd.Context())
			if err != nil {
				return err
			}
			return adapter.DeleteFontVariant(cmd.Context(), args[0], delSlot, delWeight, delStyle)
		},
	}
	del.Flags().StringVar(&delSlot, "slot", types.FontSlotPrimary, "font slot: primary|secondary")
	del.Flags().IntVar(&delWeight, "weight", 400, "font weight")
	del.Flags().StringVar(&delStyle, "style", types.FontStyleNormal, "font style")

	cmd.AddCommand(upsert, del)
	return cmd
}

func newColorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colors",
		Short: "Maintain a tenant's color palette",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <tenant> <role=value>...",
		Short: "Set one or more color roles",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			colors, err := ParseColorArgs(args[1:])
			if err != nil {
				return err
			}
			adapter, err := openWriter(cmd.Context())
			if err != nil {
				return err
			}
			return adapter.UpdateColors(cmd.Context(), args[0], colors)
		},
	})
	return cmd
}

// ParseColorArgs parses role=value pairs.
func ParseColorArgs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		role, value, ok := strings.Cut(a, "=")
		role, value = strings.TrimSpace(role), strings.TrimSpace(value)
		if !ok || role == "" || value == "" {
			return nil, fmt.Errorf("expected role=value, got %q", a)
		}
		out[role] = value
	}
	return out, nil
}
