package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"quizlet-importer/internal/components/telemetry"
	"quizlet-importer/internal/importer"
	"quizlet-importer/internal/quizlet"
	libtelemetry "quizlet-importer/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var importFlags struct {
	file       string
	parent     string
	addReverse bool
	noAudio    bool
	plain      bool
	showErrors bool
}

func init() {
	flags := importCmd.Flags()
	flags.StringVarP(&importFlags.file, "file", "f", "", "Read urls from this file, one per line (- for stdin).")
	flags.StringVarP(&importFlags.parent, "parent", "p", "", "Import the decks under this deck.")
	flags.BoolVar(&importFlags.addReverse, "add-reverse", false, "Also generate a reverse card for every term.")
	flags.BoolVar(&importFlags.noAudio, "no-audio", false, "Skip downloading term audio.")
	flags.BoolVar(&importFlags.plain, "plain", false, "Ignore rich text formatting and import plain text only.")
	flags.BoolVar(&importFlags.showErrors, "show-errors", false, "Print the http exchange behind unknown errors.")
	flags.String("qlts", "", "Value of the qlts cookie of a logged in browser session.")
	flags.String("collection", "", "Path of the collection database.")
	flags.String("media-dir", "", "Directory media files are written to.")
	flags.String("dump-dir", "", "Dump every http response into this directory.")
	rootCmd.AddCommand(importCmd)
}

func readUrls(args []string) ([]string, error) {
	urls := append([]string{}, args...)
	if importFlags.file == "" {
		return urls, nil
	}

	var in io.Reader = os.Stdin
	if importFlags.file != "-" {
		f, err := os.Open(importFlags.file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	contents, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return append(urls, quizlet.SplitInputs(string(contents))...), nil
}

var importCmd = &cobra.Command{
	Use:   "import [urls...] [-f <file>]",
	Short: "Imports Quizlet decks and folders into the collection.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("add-reverse") {
			cfg.AddReverse = importFlags.addReverse
		}
		if importFlags.noAudio {
			cfg.AddAudio = false
		}
		if importFlags.plain {
			cfg.RichTextFormatting = false
		}

		urls, err := readUrls(args)
		if err != nil {
			return fmt.Errorf("read urls: %w", err)
		}
		if len(urls) == 0 {
			return fmt.Errorf("no urls given")
		}

		ctx := cmd.Context()
		libtelemetry.InstrumentPerfStats(ctx, 15*time.Second)

		session, err := importer.OpenSession(cfg, func(status string) {
			fmt.Fprintln(os.Stderr, status)
		}, telemetry.SlogAPI{})
		if err != nil {
			return err
		}
		defer session.Close()

		start := time.Now()
		report := session.Import(ctx, urls, importFlags.parent)
		slog.Debug("import finished", "seconds", time.Since(start).Seconds())

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Url", "Deck", "Cards", "Missing Media", "Result"})
		for _, res := range report.Results {
			t.AppendRow(table.Row{res.URL, res.DeckName, res.Terms, res.MediaFailed, res.Status})
		}
		t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf(
			"%d imported, %d failed, %d cancelled",
			report.Count(importer.Imported),
			report.Count(importer.Failed),
			report.Count(importer.Cancelled),
		)})
		t.SetStyle(table.StyleRounded)
		t.Render()

		if importFlags.showErrors {
			for _, res := range report.Results {
				if res.Diagnostic == "" {
					continue
				}
				fmt.Fprintf(os.Stderr, "\n==== %s ====\n%s\n", res.URL, res.Diagnostic)
			}
		}

		if report.Count(importer.Imported) == 0 {
			return fmt.Errorf("nothing was imported")
		}
		return nil
	},
}
