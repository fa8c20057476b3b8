package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/migrations"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRecord struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "", "JSON file with [{name, measurement_unit}]")
	tagsPath := flag.String("tags", "", "JSON file with [{name, color, slug}]")
	adminEmail := flag.String("admin-email", "", "Create an admin user with this email")
	adminPassword := flag.String("admin-password", "", "Password for the admin user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	if *ingredientsPath != "" {
		n, err := seedIngredients(db, *ingredientsPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to seed ingredients")
		}
		logging.Info().Int("count", n).Msg("ingredients loaded")
	}
	if *tagsPath != "" {
		n, err := seedTags(db, *tagsPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to seed tags")
		}
		logging.Info().Int("count", n).Msg("tags loaded")
	}
	if *adminEmail != "" {
		if err := seedAdmin(db, *adminEmail, *adminPassword); err != nil {
			logging.Fatal().Err(err).Msg("failed to create admin")
		}
		logging.Info().Str("email", *adminEmail).Msg("admin ready")
	}
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// seedIngredients inserts the file's ingredients, skipping (name, unit) pairs
// that already exist.
func seedIngredients(db *gorm.DB, path string) (int, error) {
	var records []ingredientRecord
	if err := readJSON(path, &records); err != nil {
		return 0, err
	}

	ingredients := make([]models.Ingredient, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.MeasurementUnit) == "" {
			continue
		}
		ingredients = append(ingredients, models.Ingredient{
			Name:            strings.TrimSpace(r.Name),
			MeasurementUnit: strings.TrimSpace(r.MeasurementUnit),
		})
	}
	if len(ingredients) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(ingredients, 500)
	return int(result.RowsAffected), result.Error
}

func seedTags(db *gorm.DB, path string) (int, error) {
	var records []tagRecord
	if err := readJSON(path, &records); err != nil {
		return 0, err
	}

	tags := make([]models.Tag, 0, len(records))
	for _, r := range records {
		color := strings.ToUpper(r.Color)
		if color == "" {
			color = "#FFFFFF"
		}
		tags = append(tags, models.Tag{Name: r.Name, Color: color, Slug: r.Slug})
	}
	if len(tags) == 0 {
		return 0, nil
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags)
	return int(result.RowsAffected), result.Error
}

func seedAdmin(db *gorm.DB, email, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	username := strings.SplitN(email, "@", 2)[0]
	admin := models.User{
		Email:        email,
		Username:     username,
		FirstName:    "Admin",
		LastName:     "Admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	return db.Where(models.User{Email: email}).
		Assign(models.User{Role: models.RoleAdmin, PasswordHash: string(hash)}).
		FirstOrCreate(&admin).Error
}
