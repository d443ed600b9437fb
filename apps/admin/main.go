package main

import (
	"database/sql"
	"log"
	"os"
	"sync"

	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// the DB is only opened by the commands that need it
	var (
		once  sync.Once
		db    *sql.DB
		dbErr error
	)
	openDB := func() (*sql.DB, error) {
		once.Do(func() {
			sqlxDB, err := database.Open(conf)
			if err != nil {
				dbErr = err
				return
			}
			db = sqlxDB.DB
		})
		return db, dbErr
	}

	// start CLI
	cli := commandLine{
		conf: conf,
		db:   openDB,
		in:   os.Stdin,
		out:  os.Stdout,
	}
	err := cli.run(os.Args)
	if db != nil {
		_ = db.Close()
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
