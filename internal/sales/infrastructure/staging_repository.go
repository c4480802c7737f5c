package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
	"salesdash/internal/shared/infrastructure"
)

// StagingTable table de travail recréée à chaque téléversement
const StagingTable = "ventes"

// RecordSpecification prédicat utilisable côté SQL et côté mémoire
type RecordSpecification interface {
	infrastructure.Specification
	Matches(r domain.SalesRecord) bool
}

// Staging stockage du jeu de données actif
// Replace remplace intégralement le contenu: il n'y a jamais qu'un seul jeu.
type Staging interface {
	Replace(ctx context.Context, records []domain.SalesRecord) error
	Find(ctx context.Context, spec RecordSpecification) ([]domain.SalesRecord, error)
	Count(ctx context.Context) (int, error)
}

// StagingRepository staging SQL (SQLite ou PostgreSQL)
type StagingRepository struct {
	infrastructure.BaseRepository
}

// NewStagingRepository crée un repository de staging sur db
func NewStagingRepository(db *sql.DB, dialect shareddomain.Dialect) *StagingRepository {
	return &StagingRepository{
		BaseRepository: infrastructure.NewBaseRepository(db, dialect),
	}
}

func (r *StagingRepository) createTableSQL() string {
	if r.Dialect() == shareddomain.DialectPostgres {
		return `CREATE TABLE ` + StagingTable + ` (
			row_id       BIGINT PRIMARY KEY,
			store_id     BIGINT NOT NULL,
			sale_date    DATE NULL,
			weekly_sales NUMERIC NOT NULL,
			holiday_flag SMALLINT NOT NULL,
			temperature  DOUBLE PRECISION NOT NULL,
			fuel_price   DOUBLE PRECISION NOT NULL,
			unemployment DOUBLE PRECISION NOT NULL
		)`
	}
	// SQLite: dates ISO en TEXT, comparables lexicographiquement
	return `CREATE TABLE ` + StagingTable + ` (
		row_id       INTEGER PRIMARY KEY,
		store_id     INTEGER NOT NULL,
		sale_date    TEXT NULL,
		weekly_sales TEXT NOT NULL,
		holiday_flag INTEGER NOT NULL,
		temperature  REAL NOT NULL,
		fuel_price   REAL NOT NULL,
		unemployment REAL NOT NULL
	)`
}

// Replace supprime puis recrée la table et y insère les lignes dans une transaction
func (r *StagingRepository) Replace(ctx context.Context, records []domain.SalesRecord) error {
	base := r.BaseRepository.WithContext(ctx)
	start := time.Now()

	err := base.UnitOfWork().Execute(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+StagingTable); err != nil {
			return fmt.Errorf("drop staging table: %w", err)
		}
		if _, err := tx.ExecContext(ctx, r.createTableSQL()); err != nil {
			return fmt.Errorf("create staging table: %w", err)
		}

		insert := fmt.Sprintf(`INSERT INTO %s
			(row_id, store_id, sale_date, weekly_sales, holiday_flag, temperature, fuel_price, unemployment)
			VALUES (%s)`, StagingTable, r.Dialect().Placeholders(1, 8))
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range records {
			var saleDate interface{}
			if !rec.Date.IsMissing() {
				saleDate = rec.Date.String()
			}
			if _, err := stmt.ExecContext(ctx,
				int64(i+1),
				int64(rec.StoreID),
				saleDate,
				rec.WeeklySales.Raw(),
				rec.HolidayFlag(),
				rec.Temperature,
				rec.FuelPrice,
				rec.Unemployment,
			); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Staging] %d rows written to %s (%s) in %v", len(records), StagingTable, r.Dialect(), time.Since(start))
	return nil
}

// Find retourne les lignes satisfaisant spec, dans l'ordre d'insertion
func (r *StagingRepository) Find(ctx context.Context, spec RecordSpecification) ([]domain.SalesRecord, error) {
	base := r.BaseRepository.WithContext(ctx)
	where, args := spec.ToSQL(r.Dialect())

	query := `SELECT store_id, sale_date, weekly_sales, holiday_flag, temperature, fuel_price, unemployment
		FROM ` + StagingTable
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY row_id"

	rows, err := base.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query staging: %w", err)
	}
	defer rows.Close()

	var records []domain.SalesRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count retourne le nombre de lignes en staging
func (r *StagingRepository) Count(ctx context.Context) (int, error) {
	base := r.BaseRepository.WithContext(ctx)
	var n int
	if err := base.QueryRow("SELECT COUNT(*) FROM " + StagingTable).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanRecord(rows *sql.Rows) (domain.SalesRecord, error) {
	var (
		rec      domain.SalesRecord
		storeID  int64
		saleDate sql.NullString
		amount   string
		holiday  int64
	)
	if err := rows.Scan(&storeID, &saleDate, &amount, &holiday, &rec.Temperature, &rec.FuelPrice, &rec.Unemployment); err != nil {
		return rec, err
	}

	sales, err := shareddomain.ParseMoney(amount)
	if err != nil {
		return rec, err
	}

	rec.StoreID = domain.StoreID(storeID)
	rec.WeeklySales = sales
	rec.Holiday = holiday == 1
	rec.Date = domain.MissingDate()
	// PostgreSQL renvoie un DATE sous forme RFC3339: seuls les 10 premiers caractères comptent
	if saleDate.Valid && len(saleDate.String) >= len(shareddomain.DateLayout) {
		t, err := time.Parse(shareddomain.DateLayout, saleDate.String[:len(shareddomain.DateLayout)])
		if err != nil {
			return rec, fmt.Errorf("stored date %q: %w", saleDate.String, err)
		}
		rec.Date = domain.NewSaleDate(t)
	}
	return rec, nil
}
