package store

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type placeholderFunc func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// customerWhere renders f as a WHERE clause for the given placeholder style.
func customerWhere(f CustomerFilter, ph placeholderFunc) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, col+" = "+ph(len(args)))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}
	if f.CreatorID != uuid.Nil {
		add("created_by_id", f.CreatorID.String())
	}
	if f.CreatorRole != "" {
		add("created_by_role", string(f.CreatorRole))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
