// Package syncstore is a persistent representation.SynchronizationReferences
// implementation backed by sqlite via GORM, following the teacher's
// internal/db repository style. It is the only component in the repository
// that talks to a database — the tracker itself only ever sees the
// representation.SynchronizationReferences interface.
package syncstore

import (
	"context"
	"time"

	"github.com/colinmarsh/segtrack/internal/db"
	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/representation"
)

// Store implements representation.SynchronizationReferences against a
// sqlite database. GetReference/AddReference cannot report an error to the
// tracker (the interface has none), so failures are logged and degrade to
// "no reference found" — the tracker treats that the same way it treats a
// cold cache.
type Store struct {
	db *db.DB
}

// Open opens (creating if necessary) the sqlite database at dbPath and
// applies pending migrations from migrationsPath (a "file://" URL, per
// golang-migrate convention).
func Open(dbPath, migrationsPath string) (*Store, error) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.GetSQLDB()
	if err != nil {
		database.Close()
		return nil, err
	}
	if err := db.RunMigrations(sqlDB, migrationsPath); err != nil {
		database.Close()
		return nil, err
	}

	return &Store{db: database}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health reports whether the underlying database connection is reachable,
// for cmd/trackerdemo's /healthz endpoint.
func (s *Store) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

// GetReference returns the reference recorded for discontinuitySequence
// whose window contains t, or failing that the most recent reference at or
// before t, or failing that the earliest reference recorded for that
// discontinuity sequence.
func (s *Store) GetReference(discontinuitySequence uint64, t time.Time) (representation.SynchronizationReference, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var rows []referenceRow
	result := s.db.WithContext(ctx).
		Where("discontinuity_sequence = ?", discontinuitySequence).
		Order("start_time ASC").
		Find(&rows)
	if result.Error != nil {
		mapped := db.MapGormError(result.Error)
		if db.IsNotFound(mapped) {
			return representation.SynchronizationReference{}, false
		}
		logger.Log.Warn().Err(mapped).Uint64("discontinuity_sequence", discontinuitySequence).
			Msg("syncstore: failed to query synchronization reference")
		return representation.SynchronizationReference{}, false
	}
	if len(rows) == 0 {
		return representation.SynchronizationReference{}, false
	}

	best := rows[0]
	for _, row := range rows {
		end := row.StartTime.Add(time.Duration(row.DurationNs))
		if !t.Before(row.StartTime) && t.Before(end) {
			best = row
			break
		}
		if !row.StartTime.After(t) {
			best = row
		}
	}

	return representation.SynchronizationReference{
		Times: representation.Times{
			Start:    best.StartTime,
			Duration: time.Duration(best.DurationNs),
		},
	}, true
}

// AddReference records a new synchronization point for discontinuitySequence.
func (s *Store) AddReference(discontinuitySequence uint64, times representation.Times) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	row := referenceRow{
		DiscontinuitySequence: discontinuitySequence,
		StartTime:             times.Start,
		DurationNs:            int64(times.Duration),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		mapped := db.MapGormError(err)
		if db.IsDuplicate(mapped) {
			logger.Log.Debug().Uint64("discontinuity_sequence", discontinuitySequence).
				Msg("syncstore: synchronization reference already recorded")
			return
		}
		logger.Log.Warn().Err(mapped).Uint64("discontinuity_sequence", discontinuitySequence).
			Msg("syncstore: failed to persist synchronization reference")
	}
}

var _ representation.SynchronizationReferences = (*Store)(nil)
