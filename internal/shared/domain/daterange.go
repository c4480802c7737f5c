package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange est retournée quand start > end
var ErrInvalidRange = errors.New("invalid date range")

// DateLayout format ISO utilisé pour les paramètres HTTP et le stockage
const DateLayout = "2006-01-02"

// DateRange représente une période inclusive de jours calendaires
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: pas de setters, valeurs fixées à la création
//   - Validation dans le constructeur (NewDateRange)
//   - Les heures sont tronquées: seules les dates calendaires comptent
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange crée une période [start, end] inclusive
// Retourne ErrInvalidRange si start est postérieur à end
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = TruncateDay(start), TruncateDay(end)
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s is after %s",
			ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}
	return DateRange{start: start, end: end}, nil
}

// ParseDateRange parse deux dates ISO ("2010-02-05")
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad start date %q", ErrInvalidRange, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: bad end date %q", ErrInvalidRange, end)
	}
	return NewDateRange(s, e)
}

// Start retourne la date de début
func (dr DateRange) Start() time.Time {
	return dr.start
}

// End retourne la date de fin
func (dr DateRange) End() time.Time {
	return dr.end
}

// Contains vérifie si une date tombe dans la période (bornes incluses)
func (dr DateRange) Contains(t time.Time) bool {
	d := TruncateDay(t)
	return !d.Before(dr.start) && !d.After(dr.end)
}

// String retourne "2010-02-05..2012-10-26"
func (dr DateRange) String() string {
	return dr.start.Format(DateLayout) + ".." + dr.end.Format(DateLayout)
}

// TruncateDay ramène une date à minuit UTC du même jour calendaire
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
