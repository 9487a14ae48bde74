package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/sqliteutil"
	"github.com/doronrpa-hub/rpa-port-customs-scanner/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will skip setting up a db
	DbSchema string
	// if unspecified, it will use `:memory:`
	DbPath string
}

type ServiceResult struct {
	DB *sql.DB
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	dbpath := ":memory:"
	if params.DbPath != "" {
		dbpath = params.DbPath
	}

	var database *sql.DB
	if params.DbSchema != "" {
		var err error
		database, err = sqliteutil.OpenDB(params.DbSchema, dbpath)
		if err != nil {
			t.Fatal(err)
		}
	}

	return ServiceResult{
			DB: database,
		}, func() {
			if database != nil {
				database.Close()
			}
			cleanup()
		}
}
