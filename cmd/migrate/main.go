package main

import (
	"flag"
	"log"

	"launchcontrol/pkg/config"
)

func main() {
	down := flag.Bool("down", false, "roll back the last migration instead of applying pending ones")
	flag.Parse()

	config.InitDB()

	if *down {
		config.RollbackMigration()
		return
	}
	config.ExecuteMigrations()
	log.Println("done")
}
