package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
	"github.com/ekaya-inc/ekaya-askdb/pkg/services"
)

var exampleQuestions = []string{
	"Show me the top 5 most expensive products",
	"What is the average horsepower by manufacturer?",
	"List employees sorted by their salaries",
}

var chatTips = []string{
	"Use natural language",
	"Be specific about what you're looking for",
	"Mention columns or metrics if possible",
}

// chatCommand is an in-chat command that does not go to the pipeline.
type chatCommand int

const (
	chatQuestion chatCommand = iota
	chatQuit
	chatSchema
	chatTables
	chatHistory
	chatHelp
)

func parseChatInput(input string) chatCommand {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", `\q`:
		return chatQuit
	case `\schema`:
		return chatSchema
	case `\tables`:
		return chatTables
	case `\history`:
		return chatHistory
	case `\help`, "?":
		return chatHelp
	}
	return chatQuestion
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		schema   string
		noTyping bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat against a schema",
		Args:  cobra.NoArgs,
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

			if len(session.Schemas()) == 0 {
				return errors.New("no schemas with base tables were found")
			}

			pterm.DefaultHeader.Println("askdb")
			pterm.Success.Printfln("Connected to %s (%d schemas)", a.cfg.Datasource.Database, len(session.Schemas()))

			if session.SelectedSchema() == "" {
				if err := chooseSchema(session); err != nil {
					return err
				}
			}

			printHelp()
			if greeting, ok := session.Transcript().Last(); ok {
				pterm.Info.Println(greeting.Content)
			}

			delay := typingDelay
			if noTyping {
				delay = 0
			}

			out := cmd.OutOrStdout()
			for {
				if err := cmd.Context().Err(); err != nil {
					return nil
				}

				input, err := pterm.DefaultInteractiveTextInput.Show(fmt.Sprintf("[%s] Question", session.SelectedSchema()))
				if err != nil {
					return nil
				}

				switch parseChatInput(input) {
				case chatQuit:
					return nil
				case chatSchema:
					if err := chooseSchema(session); err != nil {
						pterm.Error.Println(err)
					}
				case chatTables:
					tables, _ := session.Tables(session.SelectedSchema())
					pterm.Info.Printfln("%s: %s", session.SelectedSchema(), strings.Join(tables, ", "))
				case chatHistory:
					printTranscript(out, session.Transcript().Turns())
				case chatHelp:
					printHelp()
				default:
					if strings.TrimSpace(input) == "" {
						continue
					}
					outcome, err := askWithSpinner(cmd, pipeline, session, input)
					if err != nil {
						pterm.Error.Println(err)
						continue
					}
					fmt.Fprintln(out)
					renderOutcome(out, outcome, delay)
					fmt.Fprintln(out)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&schema, "schema", "s", "", "schema to start with; prompts when omitted")
	cmd.Flags().BoolVar(&noTyping, "no-typing", false, "print explanations at once instead of typing them out")

	return cmd
}

func chooseSchema(session *services.Session) error {
	selected, err := pterm.DefaultInteractiveSelect.
		WithDefaultText("Schema").
		WithOptions(session.Schemas()).
		Show()
	if err != nil {
		return err
	}
	return session.SelectSchema(selected)
}

func printHelp() {
	pterm.DefaultSection.Println("Tips")
	items := make([]pterm.BulletListItem, 0, len(exampleQuestions)+len(chatTips)+2)
	items = append(items, pterm.BulletListItem{Level: 0, Text: "Example questions"})
	for _, q := range exampleQuestions {
		items = append(items, pterm.BulletListItem{Level: 1, Text: fmt.Sprintf("%q", q)})
	}
	items = append(items, pterm.BulletListItem{Level: 0, Text: "Tips"})
	for _, t := range chatTips {
		items = append(items, pterm.BulletListItem{Level: 1, Text: t})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
	pterm.Println(`Commands: \schema  \tables  \history  \help  exit`)
}

func printTranscript(w io.Writer, turns []models.ConversationTurn) {
	for _, turn := range turns {
		fmt.Fprintf(w, "%s [%s]\n%s\n\n", turn.Role, turn.CreatedAt.Format("15:04:05"), turn.Content)
	}
}
