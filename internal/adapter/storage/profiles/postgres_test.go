package profilestorage

import (
	"github.com/burenotti/go_endurance_backend/internal/domain/profile"
	"github.com/leporo/sqlf"
	"github.com/samber/lo"
	"strings"
	"testing"
)

// setColumns maps every SET column of an UPDATE to its argument.
func setColumns(t *testing.T, q *sqlf.Stmt) map[string]any {
	t.Helper()
	sql := q.String()
	i := strings.Index(sql, " SET ")
	if i < 0 {
		t.Fatalf("no SET clause in %q", sql)
	}
	set := sql[i+len(" SET "):]
	if j := strings.Index(set, " WHERE "); j >= 0 {
		set = set[:j]
	}

	columns := strings.Split(set, ", ")
	args := q.Args()
	if len(args) < len(columns) {
		t.Fatalf("%d columns, %d args", len(columns), len(args))
	}

	out := make(map[string]any, len(columns))
	for n, c := range columns {
		out[strings.TrimSuffix(c, "=?")] = args[n]
	}
	return out
}

func TestSetDetails(t *testing.T) {
	p := profile.New("u1", "jo@example.com", "Jo", "Do")
	p.Injuries = nil
	p.PreferredDays = []profile.Weekday{profile.Monday, profile.Sunday}
	p.MainSport = lo.ToPtr(profile.SportSwimming)
	p.SwimPace = lo.ToPtr(110)

	q, err := setDetails(sqlf.Update("profiles"), p)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()
	cols := setColumns(t, q)

	if raw, _ := cols["injuries"].(*string); raw == nil || *raw != "[]" {
		t.Errorf("injuries = %v, want an empty list", cols["injuries"])
	}
	if raw, _ := cols["preferred_days"].(*string); raw == nil || *raw != `["monday","sunday"]` {
		t.Errorf("preferred_days = %v", cols["preferred_days"])
	}
	if raw, _ := cols["preferred_sports"].(*string); raw != nil {
		t.Errorf("preferred_sports = %q, want NULL", *raw)
	}
	if pace, _ := cols["swim_pace"].(*int); pace == nil || *pace != 110 {
		t.Errorf("swim_pace = %v", cols["swim_pace"])
	}
	if pace, _ := cols["run_pace"].(*int); pace != nil {
		t.Errorf("run_pace = %d, want NULL", *pace)
	}
	if cols["first_name"] != "Jo" {
		t.Errorf("first_name = %v", cols["first_name"])
	}
	if len(cols) != 31 {
		t.Errorf("%d columns set", len(cols))
	}
}
