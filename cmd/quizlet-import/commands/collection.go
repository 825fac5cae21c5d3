package commands

import (
	"fmt"
	"os"
	"strings"

	"quizlet-importer/internal/collection"
	"quizlet-importer/internal/components/chrono"
	"quizlet-importer/internal/components/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	decksCmd.Flags().String("collection", "", "Path of the collection database.")
	decksCmd.Flags().String("media-dir", "", "Directory media files are written to.")
	rootCmd.AddCommand(decksCmd)
	rootCmd.AddCommand(noteTypeCmd)
}

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "Lists the decks in the collection with their card counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		coll, err := collection.Open(collection.Config{
			DB:       cfg.Collection,
			MediaDir: cfg.MediaDir,
		}, chrono.NewStandardImpl(), telemetry.SlogAPI{})
		if err != nil {
			return err
		}
		defer coll.Close()

		decks, err := coll.Decks(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Deck", "Cards"})
		for _, d := range decks {
			t.AppendRow(table.Row{d.Name, d.Cards})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		nt, ok, err := coll.NoteType(cmd.Context())
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("note type: %s (%s)\n", nt.Name, strings.Join(nt.Fields, ", "))
		}
		return nil
	},
}

var noteTypeAudio bool

func init() {
	noteTypeCmd.Flags().BoolVar(&noteTypeAudio, "audio", true, "Include the audio fields.")
}

var noteTypeCmd = &cobra.Command{
	Use:   "notetype",
	Short: "Prints the fields and templates of the note type imports create.",
	Run: func(cmd *cobra.Command, args []string) {
		nt := collection.NewNoteType(noteTypeAudio)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle(nt.Name)
		t.AppendHeader(table.Row{"Field"})
		for _, f := range nt.Fields {
			t.AppendRow(table.Row{f})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		for _, tmpl := range nt.Templates {
			fmt.Printf("\n== %s ==\n", tmpl.Name)
			if tmpl.Requires != "" {
				fmt.Printf("(only when %q is filled in)\n", tmpl.Requires)
			}
			fmt.Printf("-- front --\n%s\n-- back --\n%s\n", tmpl.Qfmt, tmpl.Afmt)
		}
	},
}
