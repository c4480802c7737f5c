package database

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	salesdomain "salesdash/internal/sales/domain"
	salesinfra "salesdash/internal/sales/infrastructure"
)

// SeedOptions paramètres du jeu d'exemple
type SeedOptions struct {
	Stores int
	Weeks  int
	Start  time.Time // premier vendredi
	Seed   int64
}

// DefaultSeedOptions reproduit la forme du jeu Walmart (45 magasins, 143 semaines)
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Stores: 45,
		Weeks:  143,
		Start:  time.Date(2010, 2, 5, 0, 0, 0, 0, time.UTC),
		Seed:   42,
	}
}

// semaines fériées du jeu d'origine: Super Bowl, Labor Day, Thanksgiving, Noël
var holidayWeeks = map[string]bool{
	"02-12": true, "02-11": true, "02-10": true, "02-08": true,
	"09-10": true, "09-09": true, "09-07": true, "09-06": true,
	"11-26": true, "11-25": true, "11-23": true, "11-22": true,
	"12-31": true, "12-30": true, "12-28": true, "12-27": true,
}

// GenerateSample génère des lignes brutes au format des fichiers téléversés
// Déterministe pour une même graine.
func GenerateSample(opts SeedOptions) []salesdomain.RawRow {
	rng := rand.New(rand.NewSource(opts.Seed))
	rows := make([]salesdomain.RawRow, 0, opts.Stores*opts.Weeks)

	for store := 1; store <= opts.Stores; store++ {
		base := 300_000 + rng.Float64()*1_900_000
		unemployment := 4 + rng.Float64()*10
		tempOffset := rng.Float64()*30 - 15

		for week := 0; week < opts.Weeks; week++ {
			date := opts.Start.AddDate(0, 0, 7*week)
			holiday := holidayWeeks[date.Format("01-02")]

			season := 1 + 0.15*math.Sin(2*math.Pi*float64(date.YearDay())/365)
			sales := base * season * (0.9 + rng.Float64()*0.2)
			if holiday {
				sales *= 1.2
			}
			if date.Month() == time.December {
				sales *= 1.3
			}
			temperature := 60 + tempOffset - 25*math.Cos(2*math.Pi*float64(date.YearDay())/365) + rng.NormFloat64()*4
			fuel := 2.5 + float64(week)*0.008 + rng.Float64()*0.1
			unemployment += rng.NormFloat64() * 0.02

			flag := "0"
			if holiday {
				flag = "1"
			}
			rows = append(rows, salesdomain.RawRow{
				StoreNumber:  strconv.Itoa(store),
				Date:         date.Format("01/02/2006"),
				WeeklySales:  formatThousands(sales),
				HolidayFlag:  flag,
				Temperature:  strconv.FormatFloat(temperature, 'f', 2, 64),
				FuelPrice:    strconv.FormatFloat(fuel, 'f', 3, 64),
				Unemployment: strconv.FormatFloat(unemployment, 'f', 3, 64),
			})
		}
	}
	return rows
}

// formatThousands écrit un montant avec séparateurs de milliers ("1,643,690.90")
func formatThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	out := make([]byte, 0, len(s)+len(intPart)/3)
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	return string(out) + frac
}

// SeedStaging normalise les lignes d'exemple et les écrit dans le staging
func SeedStaging(ctx context.Context, staging salesinfra.Staging, rows []salesdomain.RawRow) (int, error) {
	records, err := salesdomain.Normalize(rows)
	if err != nil {
		return 0, fmt.Errorf("normalisation du jeu d'exemple: %w", err)
	}
	if err := staging.Replace(ctx, records); err != nil {
		return 0, fmt.Errorf("écriture du staging: %w", err)
	}
	return len(records), nil
}
