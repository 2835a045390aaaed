package checklist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Registers the postgres driver used by the checklist store.
	_ "github.com/lib/pq"
)

// Store reads versioned checklists and published scenario snapshots from
// Postgres. Both tables keep the four-section item lists as a JSON column, so
// a row scan plus unmarshal yields a complete Checklist.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// OpenStore connects to Postgres with the given DSN and verifies the
// connection.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open checklist db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping checklist db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetLatestVersion returns the newest version of the checklist record with
// the given id.
func (s *Store) GetLatestVersion(ctx context.Context, checklistID string) (Checklist, error) {
	const query = `
		SELECT sections
		FROM checklist_versions
		WHERE checklist_id = $1
		ORDER BY version DESC
		LIMIT 1`

	var sections []byte
	err := s.db.QueryRowContext(ctx, query, checklistID).Scan(&sections)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checklist %q not found", checklistID)
	}
	if err != nil {
		return nil, fmt.Errorf("query checklist %q: %w", checklistID, err)
	}
	return unmarshalSections(sections)
}

// GetScenarioSnapshot returns the immutable checklist snapshot embedded in a
// published scenario. Snapshots are already filtered to included items; item
// exclusion happens when the scenario is published, not here.
func (s *Store) GetScenarioSnapshot(ctx context.Context, scenarioID string) (Checklist, error) {
	const query = `
		SELECT checklist_snapshot
		FROM scenarios
		WHERE id = $1 AND published = TRUE`

	var snapshot []byte
	err := s.db.QueryRowContext(ctx, query, scenarioID).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("published scenario %q not found", scenarioID)
	}
	if err != nil {
		return nil, fmt.Errorf("query scenario %q: %w", scenarioID, err)
	}
	return unmarshalSections(snapshot)
}

func unmarshalSections(raw []byte) (Checklist, error) {
	var cl Checklist
	if err := json.Unmarshal(raw, &cl); err != nil {
		return nil, fmt.Errorf("decode checklist sections: %w", err)
	}
	if cl == nil {
		cl = Checklist{}
	}
	for _, section := range Sections() {
		if _, ok := cl[section]; !ok {
			cl[section] = nil
		}
	}
	return cl, nil
}
