package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

const stateDir = "dev/.state"

func create(recreate bool, otlpEndpoint string) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll(stateDir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll(stateDir, 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	err = CreateCollection()
	if err != nil {
		return err
	}
	err = WriteLocalConfig()
	if err != nil {
		return err
	}
	if otlpEndpoint != "" {
		err = WriteTelemetryConfig(otlpEndpoint)
		if err != nil {
			return err
		}
	}
	PrintConfigLocations()

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	otlp := flag.String("otlp", "", "grpc endpoint of a local otel collector, e.g. localhost:4317")
	flag.Parse()

	err := create(*recreate, *otlp)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
