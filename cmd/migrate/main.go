package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/Apurer/ventrest-api/internal/app/api"
	"github.com/Apurer/ventrest-api/internal/platform/migrations"
)

const usage = "usage: migrate up|down|version"

func main() {
	if len(os.Args) != 2 {
		log.Fatal(usage)
	}
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required")
	}
	m, err := migrations.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _, _ = m.Close() }()

	switch os.Args[1] {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return
		}
		if verr != nil {
			log.Fatal(verr)
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return
	default:
		log.Fatal(usage)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate %s: %v", os.Args[1], err)
	}
	log.Printf("migrate %s done", os.Args[1])
}
