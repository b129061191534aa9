package main

import (
	"github.com/darasoft/shule/storage/database"
)

var migrateFunc = database.MigrateCommand // mockable

func (cli *commandLine) migrate(args []string) error {
	command := args[0]
	var arguments []string
	if len(args) > 1 {
		arguments = args[1:]
	}
	return migrateFunc(cli.db.DB, command, arguments...)
}
