package commands

import (
	"fmt"
	"os"

	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/internal/quizlet"
	"quizlet-importer/internal/richtext"
	"quizlet-importer/lib/restyutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var inspectRich bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectRich, "rich", false, "Show the rendered rich text instead of the plain text.")
	inspectCmd.Flags().String("qlts", "", "Value of the qlts cookie of a logged in browser session.")
	inspectCmd.Flags().String("dump-dir", "", "Dump every http response into this directory.")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <url>",
	Short: "Fetches a deck and prints its terms without importing anything.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		input, err := quizlet.ParseInput(args[0])
		if err != nil {
			return err
		}
		if input.Kind != quizlet.DeckInput {
			return fmt.Errorf("%s is a folder, inspect one of its decks instead", input.URL)
		}

		var dump restyutil.Output
		if cfg.DumpDir != "" {
			out, err := restyutil.NewFilesystemOutput(cfg.DumpDir)
			if err != nil {
				return err
			}
			dump = out
		}
		client, err := quizlet.NewClient(quizlet.ClientOptions{
			Qlts:              cfg.Qlts,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Dump:              dump,
		}, telemetry.SlogAPI{})
		if err != nil {
			return err
		}

		deck, err := client.Deck(cmd.Context(), input.DeckID)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(fmt.Sprintf("%s (%d terms)", deck.Metadata.Title, len(deck.Terms)))
		t.AppendHeader(table.Row{"#", "Word", "Definition", "Image", "Audio"})
		for i, term := range deck.Terms {
			word, definition := term.Word, term.Definition
			if inspectRich {
				word = richtext.Render(term.WordRichText, richtext.Ankify(word))
				definition = richtext.Render(term.DefinitionRichText, richtext.Ankify(definition))
			}
			audio := ""
			if term.WordAudioURL != "" || term.DefinitionAudioURL != "" {
				audio = "yes"
			}
			t.AppendRow(table.Row{i + 1, word, definition, term.ImageURL, audio})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
