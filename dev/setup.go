package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"quizlet-importer/internal/db"
	"quizlet-importer/lib/sqliteutil"
	"quizlet-importer/lib/telemetry"
)

var (
	collectionPath = filepath.Join(stateDir, "collection.sqlite")
	mediaDir       = filepath.Join(stateDir, "collection.media")
	dumpDir        = filepath.Join(stateDir, "resty")
)

const (
	localConfigPath     = "quizlet.local.json5"
	telemetryConfigPath = "telemetry.json5"
)

func CreateCollection() error {
	_, err := os.Stat(collectionPath)
	if err == nil {
		fmt.Println("collection already created at", collectionPath)
		return nil
	}

	fmt.Println("creating collection at", collectionPath)
	database, err := sqliteutil.OpenDB(db.Schema, sqliteutil.Config{File: collectionPath})
	if err != nil {
		return err
	}
	defer database.Close()
	return os.MkdirAll(mediaDir, 0777)
}

// writeIfMissing never overwrites, local config files may have been edited
// by hand.
func writeIfMissing(path string, value any) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println(path, "already exists, leaving it alone")
		return nil
	}
	contents, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0600)
}

func WriteLocalConfig() error {
	return writeIfMissing(localConfigPath, map[string]any{
		"collection": sqliteutil.Config{File: collectionPath},
		"media_dir":  mediaDir,
		"dump_dir":   dumpDir,
		// slower than the default so that repeated runs don't trip the captcha
		"pause_seconds": 3,
	})
}

func WriteTelemetryConfig(endpoint string) error {
	return writeIfMissing(telemetryConfigPath, telemetry.Config{
		Otlp: telemetry.OtlpConfig{
			Traces:  telemetry.OtlpConnConfig{GrpcEndpoint: endpoint},
			Metrics: telemetry.OtlpConnConfig{GrpcEndpoint: endpoint},
		},
	})
}

func PrintConfigLocations() {
	fmt.Println()
	fmt.Println("collection:", collectionPath)
	fmt.Println("media:", mediaDir)
	fmt.Println("http dumps:", dumpDir)
	fmt.Println("config overlay:", localConfigPath)
	if _, err := os.Stat(telemetryConfigPath); err == nil {
		fmt.Println("telemetry:", telemetryConfigPath)
	}
}
