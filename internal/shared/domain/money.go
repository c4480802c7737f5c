package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount est retournée quand un montant ne peut pas être converti en décimal
var ErrMalformedAmount = errors.New("malformed amount")

// Money représente un montant de ventes exact (pas d'arrondi flottant)
// DESIGN PATTERN: Value Object (DDD)
//   - Immutable: toutes les opérations retournent une nouvelle valeur
//   - decimal.Decimal garantit que 1200.50 + 800.00 == 2000.50 exactement
//
// Contrairement à la version float64, les montants négatifs sont acceptés:
// une semaine de retours nets peut produire des ventes négatives.
type Money struct {
	amount decimal.Decimal
}

// Zero retourne un montant nul
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney crée un Money à partir d'un float (utilisé par les tests et le seed)
func NewMoney(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount)}
}

// ParseMoney convertit un texte en Money après suppression des séparateurs de milliers
// "1,200.50" -> 1200.50, "12a0" -> ErrMalformedAmount
func ParseMoney(text string) (Money, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return Money{}, fmt.Errorf("%w: empty value", ErrMalformedAmount)
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrMalformedAmount, text)
	}
	return Money{amount: amount}, nil
}

// Decimal retourne la valeur décimale sous-jacente
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 retourne le montant en float (graphiques uniquement, jamais pour les sommes)
func (m Money) Float64() float64 {
	f, _ := m.amount.Float64()
	return f
}

// Add additionne deux montants
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// DivideBy divise le montant par un nombre de lignes
// PRÉCONDITION: count > 0, sinon retourne zéro (pas de division par zéro)
func (m Money) DivideBy(count int) Money {
	if count <= 0 {
		return Zero()
	}
	return Money{amount: m.amount.Div(decimal.NewFromInt(int64(count)))}
}

// Cmp compare deux montants (-1, 0, 1)
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// Equal vérifie l'égalité de valeur (1200.5 == 1200.50)
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero vérifie si le montant est zéro
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// String retourne le montant avec deux décimales ("2000.50")
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// Raw retourne la représentation exacte, sans arrondi
func (m Money) Raw() string {
	return m.amount.String()
}
