package storage

import (
	"database/sql"
	"errors"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// ErrPresetNotFound is returned when no preset has the requested name.
var ErrPresetNotFound = errors.New("preset not found")

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Close() error
}

type Store struct{ db DB }

// Preset is a named chart configuration, stored as its option query string.
type Preset struct {
	Name      string
	Query     string
	CreatedAt int64
}

// UsageStats aggregates renders of one chart target.
type UsageStats struct {
	Count   int
	Failed  int
	Formats map[string]int
}

// TimeSeriesPoint is the number of renders in the UTC day starting at
// Timestamp.
type TimeSeriesPoint struct {
	Timestamp int64
	Count     int
}

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS presets(
		name TEXT PRIMARY KEY, query TEXT NOT NULL, created_at INTEGER
	);
	CREATE TABLE IF NOT EXISTS renders(
		target TEXT, format TEXT, ok INTEGER, ts INTEGER
	);
	CREATE INDEX IF NOT EXISTS renders_ts ON renders(ts)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

func (s *Store) SavePreset(name, query string, ts int64) error {
	_, err := s.db.Exec(`INSERT INTO presets(name,query,created_at) VALUES(?,?,?)
		ON CONFLICT(name) DO UPDATE SET query=excluded.query, created_at=excluded.created_at`,
		name, query, ts)
	return err
}

func (s *Store) GetPreset(name string) (Preset, error) {
	var p Preset
	err := s.db.QueryRow(`SELECT name,query,created_at FROM presets WHERE name=?`, name).
		Scan(&p.Name, &p.Query, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, ErrPresetNotFound
	}
	return p, err
}

func (s *Store) ListPresets() ([]Preset, error) {
	rows, err := s.db.Query(`SELECT name,query,created_at FROM presets ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Preset
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.Name, &p.Query, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) DeletePreset(name string) error {
	res, err := s.db.Exec(`DELETE FROM presets WHERE name=?`, name)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrPresetNotFound
	}
	return nil
}

// LogRender records one chart request for usage statistics.
func (s *Store) LogRender(target, format string, ok bool, ts int64) error {
	okInt := 0
	if ok {
		okInt = 1
	}
	_, err := s.db.Exec(`INSERT INTO renders(target,format,ok,ts) VALUES(?,?,?,?)`,
		target, format, okInt, ts)
	return err
}

// UsageStats groups renders since ts by target.
func (s *Store) UsageStats(since int64) (map[string]*UsageStats, error) {
	rows, err := s.db.Query(`SELECT target,format,ok,COUNT(*) FROM renders WHERE ts>=?
		GROUP BY target,format,ok`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]*UsageStats{}
	for rows.Next() {
		var target, format string
		var ok, n int
		if err := rows.Scan(&target, &format, &ok, &n); err != nil {
			return nil, err
		}
		st := out[target]
		if st == nil {
			st = &UsageStats{Formats: map[string]int{}}
			out[target] = st
		}
		st.Count += n
		st.Formats[format] += n
		if ok == 0 {
			st.Failed += n
		}
	}
	return out, rows.Err()
}

// UsageTimeSeries counts renders since ts per target and UTC day, oldest
// day first.
func (s *Store) UsageTimeSeries(since int64) (map[string][]TimeSeriesPoint, error) {
	rows, err := s.db.Query(`SELECT target,(ts/86400)*86400 AS day,COUNT(*) FROM renders WHERE ts>=?
		GROUP BY target,day ORDER BY day ASC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]TimeSeriesPoint{}
	for rows.Next() {
		var target string
		var p TimeSeriesPoint
		if err := rows.Scan(&target, &p.Timestamp, &p.Count); err != nil {
			return nil, err
		}
		out[target] = append(out[target], p)
	}
	return out, rows.Err()
}
