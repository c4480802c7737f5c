package infrastructure

import (
	"context"
	"database/sql"

	"salesdash/internal/shared/domain"
)

// UnitOfWork gère les transactions pour les opérations d'écriture
type UnitOfWork interface {
	Begin() (*sql.Tx, error)
	Commit(tx *sql.Tx) error
	Rollback(tx *sql.Tx) error
	Execute(fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db  *sql.DB
	ctx context.Context
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(ctx context.Context, db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db, ctx: ctx}
}

// Begin démarre une transaction
func (uow *DBUnitOfWork) Begin() (*sql.Tx, error) {
	return uow.db.BeginTx(uow.ctx, nil)
}

// Commit valide une transaction
func (uow *DBUnitOfWork) Commit(tx *sql.Tx) error {
	return tx.Commit()
}

// Rollback annule une transaction
func (uow *DBUnitOfWork) Rollback(tx *sql.Tx) error {
	return tx.Rollback()
}

// Execute exécute une fonction dans une transaction
// Rollback automatique si fn retourne une erreur ou panique
func (uow *DBUnitOfWork) Execute(fn func(tx *sql.Tx) error) error {
	tx, err := uow.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback(tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := uow.Rollback(tx); rbErr != nil {
			return rbErr
		}
		return err
	}

	return uow.Commit(tx)
}

// Specification pattern pour les prédicats de filtrage
// ToSQL retourne une clause WHERE paramétrée (sans le mot-clé WHERE) et ses arguments.
// Aucune valeur utilisateur ne doit apparaître dans le texte retourné.
type Specification interface {
	ToSQL(dialect domain.Dialect) (string, []interface{})
}

// BaseRepository structure de base pour les repositories
type BaseRepository struct {
	db      *sql.DB
	dialect domain.Dialect
	ctx     context.Context
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB, dialect domain.Dialect) BaseRepository {
	return BaseRepository{
		db:      db,
		dialect: dialect,
		ctx:     context.Background(),
	}
}

// WithContext retourne une copie du repository liée à ctx (annulation/timeout)
func (r BaseRepository) WithContext(ctx context.Context) BaseRepository {
	r.ctx = ctx
	return r
}

// DB retourne la connexion sous-jacente
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// Dialect retourne le dialecte SQL
func (r *BaseRepository) Dialect() domain.Dialect {
	return r.dialect
}

// Context retourne le contexte actuel
func (r *BaseRepository) Context() context.Context {
	return r.ctx
}

// UnitOfWork retourne une unité de travail liée au contexte du repository
func (r *BaseRepository) UnitOfWork() UnitOfWork {
	return NewUnitOfWork(r.ctx, r.db)
}

// Query exécute une requête de lecture
func (r *BaseRepository) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return r.db.QueryContext(r.ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(r.ctx, query, args...)
}

// Exec exécute une requête d'écriture
func (r *BaseRepository) Exec(query string, args ...interface{}) (sql.Result, error) {
	return r.db.ExecContext(r.ctx, query, args...)
}
