package main

import (
	"database/sql"

	"github.com/mehy12/edumate/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

type dbOpener func() (*sql.DB, error)

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.db()
	if err != nil {
		return err
	}
	return gooseRunFunc(db, args[0], args[1:]...)
}
