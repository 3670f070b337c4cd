package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"lifebookshelf-sync/internal/domain"
)

type PublicationRepository interface {
	GetAllDetails(ctx context.Context) ([]domain.Publication, error)
	GetDetails(ctx context.Context, publicationID int64) (*domain.Publication, error)
	GetDeviceTokens(ctx context.Context, memberID int64) ([]string, error)
	ApplyUpdates(ctx context.Context, updates []domain.PublicationUpdate) error
}

type publicationRepository struct {
	db *sqlx.DB
}

func NewPublicationRepository(db *sqlx.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

const publicationDetailsQuery = `
	SELECT
		p.id AS publication_id,
		b.id AS book_id,
		m.id AS member_id,
		mm.name AS member_name,
		m.email AS member_email,
		b.title AS book_title,
		b.page_count AS page_count,
		b.cover_image_key AS cover_image_key,
		p.price AS price,
		p.requested_at AS requested_at,
		p.will_publish_at AS will_publish_at,
		p.publish_status AS publish_status,
		p.published_at AS published_at,
		d.fcm_token AS device_token
	FROM member_metadatas mm
	JOIN members m ON mm.member_id = m.id
	JOIN books b ON b.member_id = m.id
	JOIN publications p ON p.book_id = b.id
	LEFT JOIN LATERAL (
		SELECT fcm_token
		FROM member_devices
		WHERE member_id = m.id
		ORDER BY created_at DESC
		LIMIT 1
	) d ON true`

func (r *publicationRepository) GetAllDetails(ctx context.Context) ([]domain.Publication, error) {
	var publications []domain.Publication
	err := r.db.SelectContext(ctx, &publications, publicationDetailsQuery)
	return publications, err
}

func (r *publicationRepository) GetDetails(ctx context.Context, publicationID int64) (*domain.Publication, error) {
	var publication domain.Publication
	query := publicationDetailsQuery + `
	WHERE p.id = $1`
	err := r.db.GetContext(ctx, &publication, query, publicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPublicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &publication, nil
}

func (r *publicationRepository) GetDeviceTokens(ctx context.Context, memberID int64) ([]string, error) {
	var tokens []string
	query := `SELECT fcm_token FROM member_devices WHERE member_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &tokens, query, memberID)
	return tokens, err
}

// ApplyUpdates corrects status and publish date for every publication in one
// statement inside one transaction: either all rows reflect the new state or
// none do. The affected-rows check rejects duplicate or vanished ids instead
// of silently updating the wrong number of rows.
func (r *publicationRepository) ApplyUpdates(ctx context.Context, updates []domain.PublicationUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args := buildApplyStatement(updates)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to apply publication updates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != int64(len(updates)) {
		return fmt.Errorf("expected %d publications updated, got %d", len(updates), affected)
	}

	return tx.Commit()
}

// buildApplyStatement emits a single conditional update covering all diffed
// ids, branching per row on id, so the apply step is one round trip.
func buildApplyStatement(updates []domain.PublicationUpdate) (string, []interface{}) {
	var (
		statusCases strings.Builder
		dateCases   strings.Builder
		ids         []string
		args        []interface{}
	)

	param := 1
	for _, u := range updates {
		statusCases.WriteString(fmt.Sprintf(" WHEN $%d THEN $%d", param, param+1))
		dateCases.WriteString(fmt.Sprintf(" WHEN $%d THEN $%d::timestamptz", param, param+2))
		ids = append(ids, fmt.Sprintf("$%d", param))
		args = append(args, u.PublicationID, string(u.NewPublishStatus), u.NewPublishedAt)
		param += 3
	}

	query := fmt.Sprintf(`UPDATE publications
	SET publish_status = CASE id%s END,
	    published_at = CASE id%s END
	WHERE id IN (%s)`,
		statusCases.String(), dateCases.String(), strings.Join(ids, ", "))

	return query, args
}
