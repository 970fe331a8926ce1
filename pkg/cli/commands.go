package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
	"github.com/ekaya-inc/ekaya-askdb/pkg/services"
)

// analyzingText is shown while a question is in flight.
const analyzingText = "Analyzing your question..."

func newSchemasCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the schemas and base tables askdb can query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			conn, session, err := a.openSession(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer conn.Close()

			var items []pterm.BulletListItem
			for _, schema := range session.Schemas() {
				items = append(items, pterm.BulletListItem{Level: 0, Text: schema})
				tables, _ := session.Tables(schema)
				for _, t := range tables {
					items = append(items, pterm.BulletListItem{Level: 1, Text: t})
				}
			}
			if len(items) == 0 {
				pterm.Warning.Println("No base tables found.")
				return nil
			}
			return pterm.DefaultBulletList.WithItems(items).Render()
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		schema   string
		markdown bool
	)

	cmd := &cobra.Command{
		Use:   "ask \"question\"",
		Short: "Answer one question against a schema",
		Example: `  askdb ask --schema Employees "List employees sorted by their salaries"
  askdb ask -s Sales --markdown "Show me the top 5 most expensive products"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			pipeline, err := buildPipeline(a.cfg, a.logger)
			if err != nil {
				return err
			}

			conn, session, err := a.openSession(cmd.Context(), schema)
			if err != nil {
				return err
			}
			defer conn.Close()

			outcome, err := askWithSpinner(cmd, pipeline, session, args[0])
			if err != nil {
				return err
			}

			if markdown {
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Reply)
			} else {
				renderOutcome(cmd.OutOrStdout(), outcome, 0)
			}

			if outcome.Err != nil && !outcome.Partial() {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schema, "schema", "s", "", "schema to ask about (required)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the reply exactly as recorded in the transcript")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

// askWithSpinner runs one turn behind a spinner.
func askWithSpinner(cmd *cobra.Command, pipeline *services.Pipeline, session *services.Session, question string) (*services.TurnOutcome, error) {
	spinner, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(analyzingText)
	outcome, err := pipeline.Ask(cmd.Context(), session, question)
	if spinner != nil {
		_ = spinner.Stop()
	}
	return outcome, err
}

func newPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			ds := a.cfg.Datasource
			spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Connecting to %s:%d/%s", ds.Host, ds.Port, ds.Database))

			conn, err := a.connect(cmd.Context())
			if err == nil {
				defer conn.Close()
				err = conn.TestConnection(cmd.Context())
			}
			if err != nil {
				if spinner != nil {
					spinner.Fail(fmt.Sprintf("Connection failed: %s", logging.SanitizeError(err)))
				}
				return errReported
			}

			if spinner != nil {
				spinner.Success(fmt.Sprintf("Connected to %s:%d/%s (%s)", ds.Host, ds.Port, ds.Database, conn.Dialect().Name))
			}
			a.logger.Debug("Ping succeeded", zap.String("host", ds.Host))
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			defer a.close()

			out, err := a.cfg.Redacted()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
