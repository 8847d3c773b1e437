package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mhollis/practicum-tracker/models"
)

// EntryRepository defines practice entry database operations. The read side
// is the entry ledger consumed by the hour aggregator: bucketed,
// time-windowed sums over non-superseded rows. Entries are never deleted;
// an amendment inserts a replacement and marks the original superseded.
type EntryRepository interface {
	GetByID(ctx context.Context, id int64) (*models.PracticeEntry, error)
	GetByDocument(ctx context.Context, documentID int64) ([]models.PracticeEntry, error)
	// GetByTraineeAndRange returns the trainee's current entries dated
	// within the inclusive window.
	GetByTraineeAndRange(ctx context.Context, traineeID int64, from, to time.Time) ([]models.PracticeEntry, error)
	CountByDocument(ctx context.Context, documentID int64) (int, error)
	SumByCategory(ctx context.Context, traineeID int64, from, to time.Time) (map[models.Category]float64, error)
	SimulatedTotal(ctx context.Context, traineeID int64, from, to time.Time) (float64, error)
	// SimulatedTotalAll sums all of the trainee's simulated hours; the
	// simulated cap is cumulative over the whole program.
	SimulatedTotalAll(ctx context.Context, traineeID int64) (float64, error)
	Create(ctx context.Context, entry *models.PracticeEntry) error
	// Supersede inserts the replacement entry and marks the original row
	// as superseded by it, atomically.
	Supersede(ctx context.Context, originalID int64, replacement *models.PracticeEntry) error
}

type entryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new practice entry repository
func NewEntryRepository(db *sql.DB) EntryRepository {
	return &entryRepository{db: db}
}

const entryColumns = `
	id, trainee_id, document_id, category, hours, entry_date,
	simulated, reflection, superseded_by, created_at
`

func (r *entryRepository) scanEntry(row interface{ Scan(...interface{}) error }) (*models.PracticeEntry, error) {
	var e models.PracticeEntry
	err := row.Scan(
		&e.ID,
		&e.TraineeID,
		&e.DocumentID,
		&e.Category,
		&e.Hours,
		&e.EntryDate,
		&e.Simulated,
		&e.Reflection,
		&e.SupersededBy,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID retrieves a practice entry by ID
func (r *entryRepository) GetByID(ctx context.Context, id int64) (*models.PracticeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM practice_entries WHERE id = ?`

	entry, err := r.scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Resource: "practice entry", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get practice entry: %w", err)
	}
	return entry, nil
}

// GetByDocument retrieves the current (non-superseded) entries of a document
func (r *entryRepository) GetByDocument(ctx context.Context, documentID int64) ([]models.PracticeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM practice_entries
		WHERE document_id = ? AND superseded_by IS NULL
		ORDER BY entry_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query practice entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PracticeEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan practice entry: %w", err)
		}
		entries = append(entries, *e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating practice entries: %w", err)
	}
	return entries, nil
}

// GetByTraineeAndRange retrieves the trainee's current entries in a window
func (r *entryRepository) GetByTraineeAndRange(ctx context.Context, traineeID int64, from, to time.Time) ([]models.PracticeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM practice_entries
		WHERE trainee_id = ? AND superseded_by IS NULL
		  AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, traineeID, models.FormatDate(from), models.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query practice entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PracticeEntry
	for rows.Next() {
		e, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan practice entry: %w", err)
		}
		entries = append(entries, *e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating practice entries: %w", err)
	}
	return entries, nil
}

// CountByDocument counts the current entries of a document
func (r *entryRepository) CountByDocument(ctx context.Context, documentID int64) (int, error) {
	query := `SELECT COUNT(*) FROM practice_entries WHERE document_id = ? AND superseded_by IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query, documentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count practice entries: %w", err)
	}
	return count, nil
}

// SumByCategory sums entry durations per category within the inclusive window
func (r *entryRepository) SumByCategory(ctx context.Context, traineeID int64, from, to time.Time) (map[models.Category]float64, error) {
	query := `
		SELECT category, COALESCE(SUM(hours), 0)
		FROM practice_entries
		WHERE trainee_id = ? AND entry_date >= ? AND entry_date <= ? AND superseded_by IS NULL
		GROUP BY category
	`

	rows, err := r.db.QueryContext(ctx, query, traineeID, models.FormatDate(from), models.FormatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to sum practice entries: %w", err)
	}
	defer rows.Close()

	totals := make(map[models.Category]float64)
	for rows.Next() {
		var category models.Category
		var hours float64
		if err := rows.Scan(&category, &hours); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals[category] = hours
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}

// SimulatedTotal sums simulated-flagged hours within the inclusive window
func (r *entryRepository) SimulatedTotal(ctx context.Context, traineeID int64, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM practice_entries
		WHERE trainee_id = ? AND entry_date >= ? AND entry_date <= ?
		  AND simulated = 1 AND superseded_by IS NULL
	`

	var total float64
	err := r.db.QueryRowContext(ctx, query, traineeID, models.FormatDate(from), models.FormatDate(to)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum simulated hours: %w", err)
	}
	return total, nil
}

// SimulatedTotalAll sums all simulated-flagged hours for a trainee
func (r *entryRepository) SimulatedTotalAll(ctx context.Context, traineeID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM practice_entries
		WHERE trainee_id = ? AND simulated = 1 AND superseded_by IS NULL
	`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, traineeID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum simulated hours: %w", err)
	}
	return total, nil
}

// Create inserts a new practice entry
func (r *entryRepository) Create(ctx context.Context, entry *models.PracticeEntry) error {
	id, err := r.insert(ctx, r.db, entry)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

// Supersede inserts the replacement and points the original at it
func (r *entryRepository) Supersede(ctx context.Context, originalID int64, replacement *models.PracticeEntry) error {
	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		id, err := r.insert(ctx, tx, replacement)
		if err != nil {
			return err
		}
		replacement.ID = id

		result, err := tx.ExecContext(ctx,
			`UPDATE practice_entries SET superseded_by = ? WHERE id = ? AND superseded_by IS NULL`,
			id, originalID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark entry superseded: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return &models.ConflictError{Resource: "practice entry", ID: originalID}
		}
		return nil
	})
}

func (r *entryRepository) insert(ctx context.Context, q Querier, entry *models.PracticeEntry) (int64, error) {
	query := `
		INSERT INTO practice_entries (trainee_id, document_id, category, hours, entry_date, simulated, reflection)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := q.ExecContext(ctx, query,
		entry.TraineeID,
		entry.DocumentID,
		entry.Category,
		entry.Hours,
		models.FormatDate(entry.EntryDate),
		entry.Simulated,
		entry.Reflection,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create practice entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get entry id: %w", err)
	}
	return id, nil
}
