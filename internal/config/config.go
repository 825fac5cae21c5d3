package config

import (
	"fmt"
	"os"
	"time"

	"quizlet-importer/lib/configutil"
	"quizlet-importer/lib/sqliteutil"

	"github.com/joho/godotenv"
)

const (
	EnvQlts                = "QUIZLET_QLTS"
	EnvCollectionUrl       = "QUIZLET_COLLECTION_URL"
	EnvCollectionAuthToken = "QUIZLET_COLLECTION_AUTH_TOKEN"
)

type Config struct {
	AddAudio           bool
	AddReverse         bool
	RichTextFormatting bool
	// value of the qlts session cookie, empty means anonymous
	Qlts string

	Collection sqliteutil.Config
	// empty means next to the collection file
	MediaDir string

	// pause between the imports of two decks
	Pause             time.Duration
	RequestsPerSecond float64
	// if set, every http response is dumped into this directory
	DumpDir string
}

func Default() Config {
	return Config{
		AddAudio:           true,
		AddReverse:         false,
		RichTextFormatting: true,
		Collection:         sqliteutil.Config{File: "collection.sqlite"},
		Pause:              1500 * time.Millisecond,
		RequestsPerSecond:  2,
	}
}

// File is the on-disk shape of the config, every field is optional so that
// an explicit false can override a true default.
type File struct {
	AddAudio           *bool             `json:"add_audio"`
	AddReverse         *bool             `json:"add_reverse"`
	RichTextFormatting *bool             `json:"rich_text_formatting"`
	Qlts               string            `json:"qlts"`
	Collection         sqliteutil.Config `json:"collection"`
	MediaDir           string            `json:"media_dir"`
	PauseSeconds       *float64          `json:"pause_seconds"`
	RequestsPerSecond  float64           `json:"requests_per_second"`
	DumpDir            string            `json:"dump_dir"`
}

// Apply returns base with every field set in f replacing it.
func (f File) Apply(base Config) (Config, error) {
	out := base
	if f.AddAudio != nil {
		out.AddAudio = *f.AddAudio
	}
	if f.AddReverse != nil {
		out.AddReverse = *f.AddReverse
	}
	if f.RichTextFormatting != nil {
		out.RichTextFormatting = *f.RichTextFormatting
	}
	if f.Qlts != "" {
		out.Qlts = f.Qlts
	}
	if f.Collection.File != "" || f.Collection.Url != "" {
		out.Collection = f.Collection
	}
	if f.MediaDir != "" {
		out.MediaDir = f.MediaDir
	}
	if f.PauseSeconds != nil {
		if *f.PauseSeconds < 0 {
			return base, fmt.Errorf("pause_seconds must not be negative, got %v", *f.PauseSeconds)
		}
		out.Pause = time.Duration(*f.PauseSeconds * float64(time.Second))
	}
	if f.RequestsPerSecond < 0 {
		return base, fmt.Errorf("requests_per_second must not be negative, got %v", f.RequestsPerSecond)
	}
	if f.RequestsPerSecond > 0 {
		out.RequestsPerSecond = f.RequestsPerSecond
	}
	if f.DumpDir != "" {
		out.DumpDir = f.DumpDir
	}
	return out, nil
}

// Load reads the config file at path (plus its .local overlay) on top of the
// defaults, then applies a .env file and the environment. A missing config
// file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	file, err := configutil.ReadConfigOr(path, File{})
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := file.Apply(Default())
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return ApplyEnv(cfg), nil
}

// ApplyEnv overrides the secrets of cfg with the environment.
func ApplyEnv(cfg Config) Config {
	if qlts := os.Getenv(EnvQlts); qlts != "" {
		cfg.Qlts = qlts
	}
	if url := os.Getenv(EnvCollectionUrl); url != "" {
		cfg.Collection.Url = url
	}
	if token := os.Getenv(EnvCollectionAuthToken); token != "" {
		cfg.Collection.AuthToken = token
	}
	return cfg
}
