package repository

import (
	"database/sql"
	"time"

	"examcoach/internal/database"
	"examcoach/internal/models"
)

// RecordRepository handles practice record database operations
type RecordRepository struct {
	db *database.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Append inserts one practice record. The record's ID and CreatedAt are
// filled in on success.
func (r *RecordRepository) Append(rec *models.PracticeRecord) error {
	query := `
		INSERT INTO practice_records (created_at, theme, score, answer, feedback)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	var score sql.NullFloat64
	if rec.Score != nil {
		score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
	}

	id, err := r.db.ExecReturningID(query, now, rec.Theme, score, rec.Answer, rec.Feedback)
	if err != nil {
		return err
	}

	rec.ID = id
	rec.CreatedAt = now
	return nil
}

// List retrieves the most recent practice records, newest first
func (r *RecordRepository) List(limit int) ([]models.PracticeRecord, error) {
	query := `
		SELECT id, created_at, theme, score, answer, feedback
		FROM practice_records
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PracticeRecord
	for rows.Next() {
		var rec models.PracticeRecord
		var score sql.NullFloat64

		err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.Theme,
			&score,
			&rec.Answer,
			&rec.Feedback,
		)
		if err != nil {
			return nil, err
		}

		if score.Valid {
			rec.Score = &score.Float64
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListAll retrieves every practice record in insertion order, for export
func (r *RecordRepository) ListAll() ([]models.PracticeRecord, error) {
	query := `
		SELECT id, created_at, theme, score, answer, feedback
		FROM practice_records
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PracticeRecord
	for rows.Next() {
		var rec models.PracticeRecord
		var score sql.NullFloat64

		err := rows.Scan(
			&rec.ID,
			&rec.CreatedAt,
			&rec.Theme,
			&score,
			&rec.Answer,
			&rec.Feedback,
		)
		if err != nil {
			return nil, err
		}

		if score.Valid {
			rec.Score = &score.Float64
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

// ImportRecords writes records preserving their original timestamps,
// optionally clearing existing rows first. The whole import runs in one
// transaction; a failure part-way leaves the table unchanged.
func (r *RecordRepository) ImportRecords(records []models.PracticeRecord, clear bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	if clear {
		if _, err := tx.Exec("DELETE FROM practice_records"); err != nil {
			tx.Rollback()
			return err
		}
	}

	query := `
		INSERT INTO practice_records (created_at, theme, score, answer, feedback)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, rec := range records {
		var score sql.NullFloat64
		if rec.Score != nil {
			score = sql.NullFloat64{Float64: *rec.Score, Valid: true}
		}
		if _, err := tx.Exec(query, rec.CreatedAt, rec.Theme, score, rec.Answer, rec.Feedback); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Stats computes aggregate statistics over the score column. Records with
// no extracted score are excluded from mean and max, not treated as zero.
func (r *RecordRepository) Stats() (*models.RecordStats, error) {
	stats := &models.RecordStats{}

	totalQuery := "SELECT COUNT(*) FROM practice_records"
	if err := r.db.QueryRow(totalQuery).Scan(&stats.TotalAttempts); err != nil {
		return nil, err
	}

	scoredQuery := `
		SELECT COUNT(score), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0)
		FROM practice_records
		WHERE score IS NOT NULL
	`
	err := r.db.QueryRow(scoredQuery).Scan(&stats.ScoredCount, &stats.MeanScore, &stats.MaxScore)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
