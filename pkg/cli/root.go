// Package cli is the askdb command line: one-shot questions, an interactive chat,
// and connection and config diagnostics.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-askdb/pkg/config"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("reported")

type rootOptions struct {
	configPath string
	version    string
}

func (o *rootOptions) load() (*app, error) {
	return newApp(o.configPath, o.version)
}

// NewRootCmd builds the askdb command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	cmd := &cobra.Command{
		Use:   "askdb",
		Short: "Ask questions about a SQL Server database in plain language",
		Long: `askdb turns a natural-language question into a T-SQL query using a language model,
runs it read-only against the selected schema, and explains the result.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	cmd.AddCommand(
		newSchemasCmd(opts),
		newAskCmd(opts),
		newChatCmd(opts),
		newPingCmd(opts),
		newConfigCmd(opts),
	)

	return cmd
}

// Execute runs askdb and exits non-zero on failure.
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(version).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			pterm.Error.Println(err)
		}
		stop()
		os.Exit(1)
	}
}
