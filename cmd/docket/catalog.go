package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/docket/internal/validator"
	"github.com/aretw0/docket/pkg/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate document catalogs",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the document kinds in menu order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat := catalog.Default()
		if cfg.CatalogFile != "" {
			if cat, err = catalog.Load(cfg.CatalogFile); err != nil {
				return err
			}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tKIND\tLABEL\tREQUIRED")
		for i, kind := range cat.Kinds() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, kind, cat.Label(kind), strings.Join(cat.RequiredFields(kind), ", "))
		}
		return tw.Flush()
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <catalog-file>",
	Short: "Validate a catalog file",
	Long:  `Checks a YAML catalog for missing prompts, duplicate kinds or labels, and other structural errors.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateCatalogFile(args[0]); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
