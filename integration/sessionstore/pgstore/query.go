package pgstore

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

const columns = "session_id, email, nickname, device_fingerprint, client_address, server_address, server_hardware, created_at, last_accessed, inactive_seconds, status"

// where renders f as a WHERE clause, numbering placeholders after offset.
func where(f session.Filter, offset int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, col+" = $"+strconv.Itoa(offset+len(args)))
	}

	if f.SessionID != "" {
		add("session_id", f.SessionID)
	}
	if f.Identity != nil {
		add("email", f.Identity.Email)
		add("nickname", f.Identity.Nickname)
	}
	if f.Status != "" {
		add("status", f.Status.String())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// set renders p as a SET list with placeholders starting at $1.
func set(p session.Patch) (string, []any) {
	var (
		cols []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		cols = append(cols, col+" = $"+strconv.Itoa(len(args)))
	}

	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Nickname != nil {
		add("nickname", *p.Nickname)
	}
	if p.LastAccessed != nil {
		add("last_accessed", *p.LastAccessed)
	}
	if p.InactiveSeconds != nil {
		add("inactive_seconds", *p.InactiveSeconds)
	}
	if p.Status != nil {
		add("status", p.Status.String())
	}
	return strings.Join(cols, ", "), args
}

func selectQuery(f session.Filter, limit bool) (string, []any) {
	clause, args := where(f, 0)
	q := "SELECT " + columns + " FROM sessions" + clause + " ORDER BY created_at, session_id"
	if limit {
		q += " LIMIT 1"
	}
	return q, args
}

// updateQuery patches the first record matching f, in the same order Find returns them.
func updateQuery(f session.Filter, p session.Patch) (string, []any) {
	setList, args := set(p)
	clause, whereArgs := where(f, len(args))
	q := "UPDATE sessions SET " + setList +
		" WHERE session_id = (SELECT session_id FROM sessions" + clause +
		" ORDER BY created_at, session_id LIMIT 1 FOR UPDATE)"
	return q, append(args, whereArgs...)
}

func deleteQuery(f session.Filter) (string, []any) {
	clause, args := where(f, 0)
	return "DELETE FROM sessions" + clause, args
}
