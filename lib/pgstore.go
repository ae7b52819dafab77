package lib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	semver "github.com/Masterminds/semver/v3"
	"github.com/lib/pq"
)

// DefaultArtifactTable is used when no table name is configured.
const DefaultArtifactTable = "flc_artifacts"

// ErrIncompatibleArtifacts is returned when a unit already has artifacts
// staged by a compiler this one can't replace.
var ErrIncompatibleArtifacts = errors.New("staged artifacts come from an incompatible compiler version")

// Store stages artifacts in a PostgreSQL table keyed by unit and kind.
type Store struct {
	db    *sql.DB
	table string
}

// OpenStore connects to PostgreSQL and makes sure the artifact table exists.
func OpenStore(ctx context.Context, connectionString string, table string) (*Store, error) {
	if table == "" {
		table = DefaultArtifactTable
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, table: pq.QuoteIdentifier(table)}
	err = db.PingContext(ctx)
	if err == nil {
		err = s.requireArtifactsTable(ctx)
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) requireArtifactsTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		unit TEXT NOT NULL,
		kind TEXT NOT NULL,
		compiler_version TEXT NOT NULL,
		content BYTEA NOT NULL,
		staged_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		PRIMARY KEY (unit, kind)
	)`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// SaveArtifacts upserts every artifact in a single transaction.
func (s *Store) SaveArtifacts(ctx context.Context, artifacts []Artifact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	checked := map[string]bool{}
	for _, a := range artifacts {
		if !checked[a.Unit] {
			err = s.checkStagedVersion(ctx, tx, a.Unit)
			if err != nil {
				return err
			}
			checked[a.Unit] = true
		}

		query := fmt.Sprintf(`INSERT INTO %s (unit, kind, compiler_version, content)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (unit, kind) DO UPDATE
			SET compiler_version = EXCLUDED.compiler_version,
				content = EXCLUDED.content,
				staged_at = now()`, s.table)
		_, err = tx.ExecContext(ctx, query, a.Unit, string(a.Kind), Version, a.Content)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadArtifact returns the staged content for unit and kind, or
// sql.ErrNoRows.
func (s *Store) LoadArtifact(ctx context.Context, unit string, kind ArtifactKind) ([]byte, error) {
	query := fmt.Sprintf(`SELECT content FROM %s WHERE unit = $1 AND kind = $2`, s.table)
	var content []byte
	err := s.db.QueryRowContext(ctx, query, unit, string(kind)).Scan(&content)
	if err != nil {
		return nil, err
	}
	return content, nil
}

func (s *Store) checkStagedVersion(ctx context.Context, tx *sql.Tx, unit string) error {
	query := fmt.Sprintf(`SELECT compiler_version FROM %s WHERE unit = $1 LIMIT 1`, s.table)
	var staged string
	err := tx.QueryRowContext(ctx, query, unit).Scan(&staged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return CheckCompatible(staged)
}

// CheckCompatible reports whether artifacts staged by compiler version staged
// may be replaced by this compiler: same major version, not newer.
func CheckCompatible(staged string) error {
	current := semver.MustParse(Version)
	stagedVersion, err := semver.NewVersion(staged)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatibleArtifacts, err)
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf(">= %d.0.0, <= %s", current.Major(), current.String()))
	if err != nil {
		return err
	}
	if !constraint.Check(stagedVersion) {
		return fmt.Errorf("%w: staged by %s, this is %s", ErrIncompatibleArtifacts, staged, Version)
	}
	return nil
}

// StageDir builds every source file in dir and stages the artifacts. Nothing
// is written unless the whole directory compiles.
func StageDir(ctx context.Context, dir string, connectionString string, table string, pkg string) error {
	units, err := ReadSourcesDir(dir)
	if err != nil {
		return err
	}

	all := [][]Artifact{}
	for _, u := range units {
		artifacts, err := BuildArtifacts(u, pkg)
		if err != nil {
			return fmt.Errorf("%s: %w", u.Path, err)
		}
		all = append(all, artifacts)
	}

	store, err := OpenStore(ctx, connectionString, table)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, artifacts := range all {
		err = store.SaveArtifacts(ctx, artifacts)
		if err != nil {
			return err
		}
	}
	return nil
}
