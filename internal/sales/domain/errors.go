package domain

import (
	"errors"
	"fmt"

	shareddomain "salesdash/internal/shared/domain"
)

var (
	// ErrMalformedAmount montant Weekly_Sales non numérique après suppression des séparateurs
	ErrMalformedAmount = shareddomain.ErrMalformedAmount
	// ErrMalformedField autre colonne typée (magasin, indicateur, mesures) illisible
	ErrMalformedField = errors.New("malformed field")
	// ErrMissingColumn colonne obligatoire absente de l'en-tête
	ErrMissingColumn = errors.New("missing column")
	// ErrEmptyFile fichier sans en-tête
	ErrEmptyFile = errors.New("empty file")
	// ErrUnsupportedFormat extension de fichier non gérée
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrUnreadableFile fichier corrompu (CSV mal formé, classeur illisible)
	ErrUnreadableFile = errors.New("unreadable file")
)

// RowError localise une erreur de normalisation (ligne de données 1-based + colonne)
type RowError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
