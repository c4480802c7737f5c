package v1

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	analyticsapp "salesdash/internal/analytics/application"
	salesdomain "salesdash/internal/sales/domain"
	shareddomain "salesdash/internal/shared/domain"
)

// ErrBadParameter paramètre de requête illisible
var ErrBadParameter = errors.New("bad parameter")

// parseStatsRequest lit stores, start, end et holiday depuis la query string
// stores accepte "1,2,3" comme "stores=1&stores=2"; une valeur vide est ignorée.
func parseStatsRequest(c *gin.Context) (analyticsapp.StatsRequest, error) {
	var req analyticsapp.StatsRequest

	for _, raw := range c.QueryArray("stores") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return req, fmt.Errorf("%w: stores=%q", ErrBadParameter, part)
			}
			req.Stores = append(req.Stores, salesdomain.StoreID(id))
		}
	}

	var err error
	if req.Start, err = parseDateParam(c, "start"); err != nil {
		return req, err
	}
	if req.End, err = parseDateParam(c, "end"); err != nil {
		return req, err
	}
	req.Holiday = c.Query("holiday")
	return req, nil
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(shareddomain.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q (attendu AAAA-MM-JJ)", ErrBadParameter, name, raw)
	}
	return &t, nil
}

// parseLimit lit un entier strictement positif, fallback si absent
func parseLimit(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit=%q", ErrBadParameter, raw)
	}
	return n, nil
}
