package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"salesdash/database"
	"salesdash/internal/config"
	salesdomain "salesdash/internal/sales/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
)

func main() {
	// Charge .env
	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	opts := database.DefaultSeedOptions()
	opts.Stores = getEnvInt("SEED_STORES", opts.Stores)
	opts.Weeks = getEnvInt("SEED_WEEKS", opts.Weeks)
	opts.Seed = int64(getEnvInt("SEED_RANDOM", int(opts.Seed)))
	output := getEnv("SEED_OUTPUT", filepath.Join("data", "walmart_sample.csv"))

	fmt.Println("🌱 Génération du jeu d'exemple...")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	rows := database.GenerateSample(opts)

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		log.Fatal("❌ Erreur création du répertoire:", err)
	}
	f, err := os.Create(output)
	if err != nil {
		log.Fatal("❌ Erreur création du fichier:", err)
	}
	if err := salesinfra.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		log.Fatal("❌ Erreur écriture CSV:", err)
	}
	if err := f.Close(); err != nil {
		log.Fatal("❌ Erreur écriture CSV:", err)
	}
	fmt.Printf("✅ %d lignes (%d magasins x %d semaines) écrites dans %s\n", len(rows), opts.Stores, opts.Weeks, output)

	// SEED_STAGING=1: charge aussi le jeu dans le staging SQL configuré
	if getEnv("SEED_STAGING", "") == "1" {
		seedStaging(rows)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("Vous pouvez maintenant démarrer l'application avec:")
	fmt.Println("  go run main.go")
	fmt.Println()
	fmt.Println("Puis téléverser le fichier:")
	fmt.Printf("  curl -F file=@%s http://localhost:8080/api/v1/datasets\n", output)
}

func seedStaging(rows []salesdomain.RawRow) {
	cfg, err := config.Load("config.toml")
	if err != nil {
		log.Fatal("❌ Erreur configuration:", err)
	}
	if cfg.Staging.Driver == config.DriverMemory {
		log.Println("Attention: staging en mémoire, rien à charger")
		return
	}
	if _, err := config.EnsureDataDir(cfg); err != nil {
		log.Fatal("❌ Erreur répertoire de données:", err)
	}

	if err := database.Init(cfg.Staging.Driver, cfg.StagingDSN()); err != nil {
		log.Fatal("❌ Erreur connexion DB:", err)
	}
	defer database.Close()

	dialect, err := database.DialectFor(cfg.Staging.Driver)
	if err != nil {
		log.Fatal("❌ Erreur dialecte:", err)
	}
	n, err := database.SeedStaging(context.Background(), salesinfra.NewStagingRepository(database.DB, dialect), rows)
	if err != nil {
		log.Fatal("❌ Erreur lors du seed:", err)
	}
	fmt.Printf("✅ %d lignes chargées dans la table %s (%s)\n", n, salesinfra.StagingTable, cfg.Staging.Driver)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
