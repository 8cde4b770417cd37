package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/virex/internal/application"
	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/inbox"
)

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long: `Create the catalog tables, the category tables declared in the
registry, and the downloads and audit tables. Safe to run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd.Context(), application.WithMigrate())
			if err != nil {
				return err
			}
			defer app.Close()

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("schema applied"))
			return nil
		},
	}
}

func newImportCmd(g *globals) *cobra.Command {
	var (
		cat      categoryFlag
		category bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import one CSV file",
		Long: `Run a CSV through the import pipeline and write the result.

With --category the file goes to the category table of --category-id;
otherwise it goes to products and --category-id is the default category.
--dry-run stores the plan without writing and prints it; the plan id can
be executed later through the admin API.`,
		Example: `  virexctl import cameras.csv
  virexctl import cis.csv --category --category-id 4 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID := cat.value(cmd)
			if category && categoryID == nil {
				return errors.New("--category requires --category-id")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req := core.ImportRequest{FileName: filepath.Base(args[0]), Data: data, CategoryID: categoryID}

			app, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			run, preview := importerFor(app.Service, category)
			out := cmd.OutOrStdout()

			if dryRun {
				plan, err := preview(cmd.Context(), req)
				if err != nil {
					return errors.New(core.FormatUserError(err))
				}
				renderPlan(out, plan)
				return nil
			}

			report, err := run(cmd.Context(), req)
			if err != nil {
				return errors.New(core.FormatUserError(err))
			}
			renderReport(out, req.FileName, report)
			if !report.Success {
				return errors.New("import completed with problems")
			}
			return nil
		},
	}

	cat.bind(cmd, "category id: target table with --category, default category otherwise")
	cmd.Flags().BoolVar(&category, "category", false, "import into the category table of --category-id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without writing")
	return cmd
}

func newWatchCmd(g *globals) *cobra.Command {
	var (
		cat      categoryFlag
		category bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Import CSV files dropped into a directory",
		Long: `Import every .csv already in <dir>, then keep watching it for new
files. Processed files move to <dir>/Uploaded. Rows that could not be
imported are written to "<name> - failed.csv" with the reason in the first
column. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID := cat.value(cmd)
			if category && categoryID == nil {
				return errors.New("--category requires --category-id")
			}

			app, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			run, _ := importerFor(app.Service, category)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, mutedStyle.Render("watching "+args[0]))
			return inbox.NewProcessor(args[0], run, categoryID).
				Watch(cmd.Context(), inbox.DefaultSettle, func(res inbox.Result, err error) {
					renderInboxResult(out, res, err)
				})
		},
	}

	cat.bind(cmd, "category id: target table with --category, default category otherwise")
	cmd.Flags().BoolVar(&category, "category", false, "import into the category table of --category-id")
	return cmd
}

func newTemplateCmd(g *globals) *cobra.Command {
	var cat categoryFlag

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print an import template header",
		Long: `Print the CSV header for the products import, or for the category
table of --category-id. The category lookup needs the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID := cat.value(cmd)
			if categoryID == nil {
				fmt.Fprint(cmd.OutOrStdout(), core.GenericTemplate().CSV())
				return nil
			}

			app, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			tmpl, err := app.Service.Template(cmd.Context(), categoryID)
			if err != nil {
				return errors.New(core.FormatUserError(err))
			}
			fmt.Fprint(cmd.OutOrStdout(), tmpl.CSV())
			return nil
		},
	}

	cat.bind(cmd, "category whose table template to print")
	return cmd
}
