package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/forkful/backend/config"
	"github.com/pageza/forkful/backend/internal/database"
	"github.com/pageza/forkful/backend/internal/logger"
	"github.com/pageza/forkful/backend/internal/service"
)

// seed loads the ingredient and tag catalogs from JSON files. The expected
// formats:
//
//	ingredients: [{"name": "flour", "measurement_unit": "g"}, ...]
//	tags:        [{"name": "Breakfast", "color": "#49B64E", "slug": "breakfast"}, ...]
type ingredientRow struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type tagRow struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

func main() {
	ingredientsPath := flag.String("ingredients", "", "path to an ingredients JSON file")
	tagsPath := flag.String("tags", "", "path to a tags JSON file")
	flag.Parse()

	if *ingredientsPath == "" && *tagsPath == "" {
		log.Fatal("nothing to do: pass -ingredients and/or -tags")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := logger.Init(string(cfg.Environment)); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewGorm(cfg)
	if err != nil {
		logger.L.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.L.Fatal("migration failed", zap.Error(err))
	}

	catalog := service.NewCatalogService(db)

	if *ingredientsPath != "" {
		var rows []ingredientRow
		loadJSON(*ingredientsPath, &rows)
		var created int
		for _, row := range rows {
			if _, err := catalog.CreateIngredient(row.Name, row.MeasurementUnit); err != nil {
				logger.L.Warn("skipping ingredient",
					zap.String("name", row.Name), zap.Error(err))
				continue
			}
			created++
		}
		logger.L.Info("ingredients seeded", zap.Int("created", created), zap.Int("total", len(rows)))
	}

	if *tagsPath != "" {
		var rows []tagRow
		loadJSON(*tagsPath, &rows)
		var created int
		for _, row := range rows {
			if _, err := catalog.CreateTag(row.Name, row.Color, row.Slug); err != nil {
				logger.L.Warn("skipping tag",
					zap.String("slug", row.Slug), zap.Error(err))
				continue
			}
			created++
		}
		logger.L.Info("tags seeded", zap.Int("created", created), zap.Int("total", len(rows)))
	}
}

func loadJSON(path string, out interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}
}
