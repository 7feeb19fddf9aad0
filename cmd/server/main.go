package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/adapters/directions"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/adapters/repositories"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/api"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/domain"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/planner"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/platform/db"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/ports"
	"github.com/Geovanni-Alves/ASP-APP-GB-sub001/internal/routing"
)

// main is the application composition root.
// It wires concrete adapters (SQLite/Postgres, ORS) behind ports and starts
// the HTTP server.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found (using environment variables)")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	seedPath := getEnv("SEED_PATH", "data/seeds/roster.json")
	port := getEnv("PORT", "8080")
	originName := getEnv("HUB_NAME", "after-school hub")

	orsKey := os.Getenv("ORS_API_KEY")
	if strings.TrimSpace(orsKey) == "" {
		logger.Fatal("ORS_API_KEY is required")
	}

	origin, err := hubCoords()
	if err != nil {
		logger.Fatal("invalid hub coordinates", zap.Error(err))
	}

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer sqliteDB.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(sqliteDB, seedPath); err != nil {
		logger.Fatal("init and seed", zap.Error(err))
	}

	roster := repositories.NewSqliteRosterRepository(sqliteDB)

	// Route sessions go to Postgres when DATABASE_URL is set, otherwise they
	// share the local SQLite file with the roster.
	var routes ports.RouteRepository = repositories.NewSqliteRouteRepository(sqliteDB, logger)
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		pg, err := db.Open(databaseURL)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer pg.Close()
		routes = repositories.NewSQLRouteRepository(pg, logger)
	}

	provider, err := directions.NewORSDirectionsProvider(orsKey)
	if err != nil {
		logger.Fatal("directions provider", zap.Error(err))
	}

	routePlanner, err := routing.NewPlanner(provider)
	if err != nil {
		logger.Fatal("routing planner", zap.Error(err))
	}
	scheduler := routing.NewScheduler(routePlanner, quietPeriod(), logger)

	manager := planner.NewManager(roster, routes, scheduler, origin, originName, logger)
	router := api.NewRouter(roster, manager)

	// WriteTimeout leaves headroom for cold-cache ETA lookups against ORS.
	logger.Info("server listening", zap.String("addr", ":"+port))
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	logger.Fatal("server stopped", zap.Error(srv.ListenAndServe()))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hubCoords() (domain.Coordinates, error) {
	lat, err := strconv.ParseFloat(getEnv("HUB_LAT", "49.2827"), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("hubCoords: parse HUB_LAT: %w", err)
	}
	lng, err := strconv.ParseFloat(getEnv("HUB_LNG", "-123.1207"), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("hubCoords: parse HUB_LNG: %w", err)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}

func quietPeriod() time.Duration {
	ms, err := strconv.Atoi(getEnv("ETA_QUIET_MS", ""))
	if err != nil || ms <= 0 {
		return routing.DefaultQuiet
	}
	return time.Duration(ms) * time.Millisecond
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
