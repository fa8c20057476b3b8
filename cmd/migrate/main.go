package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	list := flag.Bool("list", false, "List migration files and exit")
	flag.Parse()

	if *list {
		files, err := database.MigrationFiles(migrations.FS)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to list migrations")
		}
		for _, name := range files {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logging.Fatal().Err(err).Msg("DATABASE_URL is not set and configuration could not be loaded")
		}
		dsn = cfg.DSN()
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer sqlDB.Close()

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormlogger.Warn)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open database")
	}

	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to apply migrations")
	}
	logging.Info().Msg("all migrations applied successfully")
}
