// Command virexctl runs catalog imports from the command line against the
// same database, storage and plan cache as the server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/virex/internal/application"
	"github.com/JonMunkholm/virex/internal/config"
	"github.com/JonMunkholm/virex/internal/core"
	"github.com/JonMunkholm/virex/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

// globals are the flags shared by every subcommand.
type globals struct {
	envFile  string
	logLevel string
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "virexctl",
		Short: "Import and inspect the VIREX product catalog",
		Long: `virexctl runs catalog CSV imports outside the HTTP server.

It reads the same environment variables as the server (DATABASE_URL,
S3_BUCKET, REDIS_ADDR, IMPORT_*), optionally from a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(g.envFile); err != nil && cmd.Flags().Changed("env-file") {
				slog.Warn("env file not loaded", "path", g.envFile, "error", err)
			}
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "environment file to load when present")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newMigrateCmd(g),
		newImportCmd(g),
		newWatchCmd(g),
		newTemplateCmd(g),
	)
	return root
}

// open loads configuration and connects the application.
func (g *globals) open(ctx context.Context, opts ...application.Option) (*application.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(g.logLevel, "text")
	return application.New(ctx, cfg, opts...)
}

// categoryFlag binds --category-id; the value is nil when the flag is unset.
type categoryFlag struct {
	id int64
}

func (c *categoryFlag) bind(cmd *cobra.Command, usage string) {
	cmd.Flags().Int64Var(&c.id, "category-id", 0, usage)
}

func (c *categoryFlag) value(cmd *cobra.Command) *int64 {
	if !cmd.Flags().Changed("category-id") {
		return nil
	}
	id := c.id
	return &id
}

// importerFor picks the generic or the category pipeline.
func importerFor(svc *core.Service, category bool) (func(context.Context, core.ImportRequest) (*core.ImportReport, error), func(context.Context, core.ImportRequest) (*core.Plan, error)) {
	if category {
		return svc.ImportCategory, svc.PreviewCategory
	}
	return svc.ImportGeneric, svc.PreviewGeneric
}
