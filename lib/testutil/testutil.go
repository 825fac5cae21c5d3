package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"quizlet-importer/lib/sqliteutil"
	"quizlet-importer/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
}

type ServiceResult struct {
	DB *sql.DB
	// an empty directory removed after the test
	Dir string
}

// SetupService prepares telemetry, an in-memory sqlite database with the
// given schema and a scratch directory for a test.
func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	result := ServiceResult{Dir: t.TempDir()}
	if params.DbSchema == "" {
		return result, cleanup
	}

	database, err := sqliteutil.OpenDB(params.DbSchema, sqliteutil.Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	result.DB = database

	return result, func() {
		database.Close()
		cleanup()
	}
}
