package testhelpers

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
	sharedinfra "salesdash/internal/shared/infrastructure"
)

// TestContext contient les dépendances des tests d'intégration
// Note: Ne contient PAS les services pour éviter les import cycles
// Les tests doivent créer leurs propres services en utilisant ce contexte
type TestContext struct {
	DB      *sql.DB
	Dialect shareddomain.Dialect

	// Repositories
	Staging *salesinfra.StagingRepository

	// Infrastructure
	Cache *sharedinfra.ShardedCache
}

// SetupSQLiteDB ouvre une base SQLite dans un répertoire temporaire du test
func SetupSQLiteDB(tb testing.TB) *sql.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "staging.db")
	db, err := sql.Open(string(shareddomain.DialectSQLite), path)
	if err != nil {
		tb.Fatalf("Failed to open sqlite database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		tb.Fatalf("Failed to ping sqlite database: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

// SetupTestDB initialise une connexion à la base PostgreSQL de test
func SetupTestDB(tb testing.TB) *sql.DB {
	tb.Helper()

	connStr := postgresConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		tb.Fatalf("Failed to open database: %v", err)
	}

	// Configuration du pool de connexions (optimisé pour tests)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		tb.Fatalf("Failed to ping database: %v\nConnection string: %s", err, hidePassword(connStr))
	}

	return db
}

// SetupTestContext initialise un contexte de test sur SQLite (défaut) ou PostgreSQL
// Les services doivent être créés par les tests eux-mêmes pour éviter les import cycles
func SetupTestContext(tb testing.TB, dialect shareddomain.Dialect) *TestContext {
	tb.Helper()

	ctx := &TestContext{Dialect: dialect}

	// 1. Initialiser la connexion DB
	if dialect == shareddomain.DialectPostgres {
		SkipIfNoDatabase(tb)
		ctx.DB = SetupTestDB(tb)
	} else {
		ctx.DB = SetupSQLiteDB(tb)
	}

	// 2. Initialiser l'infrastructure partagée
	ctx.Cache = sharedinfra.NewShardedCache(16)

	// 3. Initialiser les repositories
	ctx.Staging = salesinfra.NewStagingRepository(ctx.DB, dialect)

	return ctx
}

// Cleanup libère les ressources du contexte de test
func (ctx *TestContext) Cleanup() {
	if ctx.Cache != nil {
		ctx.Cache.Close()
	}
	if ctx.DB != nil {
		ctx.DB.Close()
	}
}

// ClearCache vide le cache (utile entre les benchmarks)
func (ctx *TestContext) ClearCache() {
	if ctx.Cache != nil {
		ctx.Cache.Clear()
	}
}

// MustNormalize normalise des lignes brutes ou arrête le test
func MustNormalize(tb testing.TB, rows []salesdomain.RawRow) []salesdomain.SalesRecord {
	tb.Helper()
	records, err := salesdomain.Normalize(rows)
	if err != nil {
		tb.Fatalf("Normalize: %v", err)
	}
	return records
}

// SampleRows petit jeu couvrant deux magasins, trois mois, une semaine fériée et une date manquante
func SampleRows() []salesdomain.RawRow {
	return []salesdomain.RawRow{
		{StoreNumber: "1", Date: "02/05/2010", WeeklySales: "1,643,690.90", HolidayFlag: "0", Temperature: "42.31", FuelPrice: "2.572", Unemployment: "8.106"},
		{StoreNumber: "1", Date: "02/12/2010", WeeklySales: "1,641,957.44", HolidayFlag: "1", Temperature: "38.51", FuelPrice: "2.548", Unemployment: "8.106"},
		{StoreNumber: "2", Date: "02/05/2010", WeeklySales: "2,136,989.46", HolidayFlag: "0", Temperature: "40.19", FuelPrice: "2.572", Unemployment: "8.324"},
		{StoreNumber: "2", Date: "03/05/2010", WeeklySales: "2,095,599.93", HolidayFlag: "0", Temperature: "46.11", FuelPrice: "2.625", Unemployment: "8.324"},
		{StoreNumber: "3", Date: "04/02/2010", WeeklySales: "418,925.47", HolidayFlag: "0", Temperature: "64.03", FuelPrice: "2.719", Unemployment: "7.368"},
		{StoreNumber: "3", Date: "not a date", WeeklySales: "400,000.00", HolidayFlag: "0", Temperature: "60.00", FuelPrice: "2.700", Unemployment: "7.368"},
	}
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func postgresConnString() string {
	// Charger les variables d'environnement
	_ = godotenv.Load("../../../.env")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "salesuser"),
		getEnv("DB_PASSWORD", "salespass"),
		getEnv("DB_NAME", "salesdb"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// hidePassword masque le mot de passe dans la connection string pour les logs
func hidePassword(connStr string) string {
	return "host=... (password hidden)"
}

// SkipIfNoDatabase skip le test/benchmark si PostgreSQL n'est pas disponible
func SkipIfNoDatabase(tb testing.TB) {
	tb.Helper()

	db, err := sql.Open("postgres", postgresConnString())
	if err != nil {
		tb.Skip("Database not available:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		tb.Skip("Database not available:", err)
	}
}
