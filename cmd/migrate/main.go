package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/lifeops/scheduler/internal/orm"
	"github.com/lifeops/scheduler/pkg/config"
)

// Runs the schema migration against the configured database and exits.
// The scheduler binary migrates on startup too; this exists for pipelines
// that migrate before rolling the service.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	storage, err := orm.New(orm.Config{
		Host:                  cfg.Database.Host,
		Port:                  cfg.Database.Port,
		Database:              cfg.Database.Database,
		User:                  cfg.Database.User,
		Password:              cfg.Database.Password,
		MaxConnections:        cfg.Database.MaxConnections,
		MaxIdleConnections:    cfg.Database.MaxIdleConnections,
		ConnectionMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer storage.Close()

	fmt.Println("Migration completed successfully")
}
