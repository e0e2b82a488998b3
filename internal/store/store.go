// Package store persists team rounds, player rounds and score records in
// SQLite. Every operation runs inside one transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/antigravity/tournamentRounds/internal/errors"
	"github.com/antigravity/tournamentRounds/internal/models"
)

// Store provides transactional access to the round tables.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New wraps an opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Close closes the underlying database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return apperrors.Storage("ping", fmt.Errorf("storage is not configured"))
	}
	return apperrors.Storage("ping", s.db.PingContext(ctx))
}

// Update runs fn in a write transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a failed operation leaves no
// partial changes behind.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	return s.run(ctx, fn)
}

// View runs fn in a transaction that is always rolled back. All reads inside
// fn observe a single snapshot.
func (s *Store) View(ctx context.Context, fn func(*Tx) error) error {
	return s.run(ctx, func(tx *Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return errRollback
	})
}

var errRollback = errors.New("rollback")

func (s *Store) run(ctx context.Context, fn func(*Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return apperrors.Storage("begin transaction", fmt.Errorf("storage is not configured"))
	}
	// The transaction is not bound to ctx: once started it runs to commit or
	// rollback so callers never observe a half-applied operation.
	sqlTx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
	if err != nil {
		return apperrors.Storage("begin transaction", err)
	}
	tx := &Tx{tx: sqlTx, ctx: context.WithoutCancel(ctx), now: s.now}
	if err := fn(tx); err != nil {
		sqlTx.Rollback()
		if err == errRollback {
			return nil
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return apperrors.Storage("commit transaction", err)
	}
	return nil
}

// Tx exposes the round queries bound to one transaction.
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
	now func() time.Time
}

func (t *Tx) queryRow(query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(t.ctx, query, args...)
}

func (t *Tx) query(query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(t.ctx, query, args...)
}

func (t *Tx) exec(query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(t.ctx, query, args...)
}

func notFound(message string, metadata map[string]string) error {
	return apperrors.WithMetadata(apperrors.CodeNotFound, message, metadata)
}

// Tournament loads a tournament by name.
func (t *Tx) Tournament(name string) (models.Tournament, error) {
	var tour models.Tournament
	err := t.queryRow("SELECT id, name, active FROM tournaments WHERE name = ?", name).
		Scan(&tour.ID, &tour.Name, &tour.Active)
	if err == sql.ErrNoRows {
		return models.Tournament{}, notFound(fmt.Sprintf("tournament %q not found", name), map[string]string{"tournament": name})
	}
	if err != nil {
		return models.Tournament{}, apperrors.Storage("load tournament", err)
	}
	return tour, nil
}

// Tournaments lists every tournament ordered by id.
func (t *Tx) Tournaments() ([]models.Tournament, error) {
	rows, err := t.query("SELECT id, name, active FROM tournaments ORDER BY id")
	if err != nil {
		return nil, apperrors.Storage("list tournaments", err)
	}
	defer rows.Close()

	var tournaments []models.Tournament
	for rows.Next() {
		var tour models.Tournament
		if err := rows.Scan(&tour.ID, &tour.Name, &tour.Active); err != nil {
			return nil, apperrors.Storage("scan tournament", err)
		}
		tournaments = append(tournaments, tour)
	}
	return tournaments, apperrors.Storage("list tournaments", rows.Err())
}

// Course loads a course by name.
func (t *Tx) Course(name string) (models.Course, error) {
	var c models.Course
	err := t.queryRow("SELECT id, name, par FROM courses WHERE name = ?", name).Scan(&c.ID, &c.Name, &c.Par)
	if err == sql.ErrNoRows {
		return models.Course{}, notFound(fmt.Sprintf("course %q not found", name), map[string]string{"course": name})
	}
	if err != nil {
		return models.Course{}, apperrors.Storage("load course", err)
	}
	return c, nil
}

// TournamentUsesCourse reports whether the tournament is played on the course.
func (t *Tx) TournamentUsesCourse(tournamentID, courseID int64) (bool, error) {
	var found int
	err := t.queryRow("SELECT 1 FROM tournament_courses WHERE tournament_id = ? AND course_id = ?", tournamentID, courseID).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Storage("check tournament course", err)
	}
	return true, nil
}

// Hole loads a hole of a course by number.
func (t *Tx) Hole(courseID int64, number int) (models.Hole, error) {
	var h models.Hole
	err := t.queryRow("SELECT id, course_id, number, name, par FROM holes WHERE course_id = ? AND number = ?", courseID, number).
		Scan(&h.ID, &h.CourseID, &h.Number, &h.Name, &h.Par)
	if err == sql.ErrNoRows {
		return models.Hole{}, notFound(fmt.Sprintf("hole %d not found on course", number), map[string]string{"hole": fmt.Sprint(number)})
	}
	if err != nil {
		return models.Hole{}, apperrors.Storage("load hole", err)
	}
	return h, nil
}

// Holes lists the holes of a course ordered by number.
func (t *Tx) Holes(courseID int64) ([]models.Hole, error) {
	rows, err := t.query("SELECT id, course_id, number, name, par FROM holes WHERE course_id = ? ORDER BY number", courseID)
	if err != nil {
		return nil, apperrors.Storage("list holes", err)
	}
	defer rows.Close()

	var holes []models.Hole
	for rows.Next() {
		var h models.Hole
		if err := rows.Scan(&h.ID, &h.CourseID, &h.Number, &h.Name, &h.Par); err != nil {
			return nil, apperrors.Storage("scan hole", err)
		}
		holes = append(holes, h)
	}
	return holes, apperrors.Storage("list holes", rows.Err())
}

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
