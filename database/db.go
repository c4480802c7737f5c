package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"salesdash/internal/config"
	shareddomain "salesdash/internal/shared/domain"
)

var DB *sql.DB

// Init ouvre la base de staging pour le pilote configuré ("sqlite" ou "postgres")
func Init(driver, dsn string) error {
	dialect, err := DialectFor(driver)
	if err != nil {
		return err
	}

	DB, err = sql.Open(string(dialect), dsn)
	if err != nil {
		return err
	}

	if dialect == shareddomain.DialectSQLite {
		// SQLite: un seul écrivain, DROP/CREATE en transaction
		DB.SetMaxOpenConns(1)
	} else {
		// Pool de connexions optimisé
		DB.SetMaxOpenConns(25)
		DB.SetMaxIdleConns(5)
		DB.SetConnMaxLifetime(5 * time.Minute)
	}

	return DB.Ping()
}

// DialectFor associe un pilote de configuration au dialecte SQL
func DialectFor(driver string) (shareddomain.Dialect, error) {
	switch driver {
	case config.DriverSQLite:
		return shareddomain.DialectSQLite, nil
	case config.DriverPostgres:
		return shareddomain.DialectPostgres, nil
	}
	return "", fmt.Errorf("no SQL dialect for staging driver %q", driver)
}

func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
