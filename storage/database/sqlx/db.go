package sqlxrepos

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ues-sigs/guarderia/core"
)

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// orderBy builds an ORDER BY clause from the requested ordering,
// falling back to def. Fields that are not plain identifiers are
// dropped rather than interpolated.
func orderBy(ordering []core.DBOrdering, def string) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if !identRegex.MatchString(ord.Field) {
			continue
		}
		clauses = append(clauses, ord.String())
	}
	if len(clauses) == 0 {
		if def == "" {
			return ""
		}
		return " ORDER BY " + def
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func itoa(n int) string { return strconv.Itoa(n) }

// isUniqueViolation reports a postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
