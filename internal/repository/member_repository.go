package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"lifebookshelf-sync/internal/domain"
)

type MemberRepository interface {
	FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Member, error)
	Purge(ctx context.Context, memberIDs []int64) error
}

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]domain.Member, error) {
	var members []domain.Member
	query := `
		SELECT m.id, mm.name, m.email, m.deleted_at
		FROM members m
		JOIN member_metadatas mm ON mm.member_id = m.id
		WHERE m.deleted_at IS NOT NULL AND m.deleted_at < $1`
	err := r.db.SelectContext(ctx, &members, query, cutoff)
	return members, err
}

// Purge permanently removes the members and everything hanging off them.
// The whole batch runs in one transaction so a failure partway leaves every
// member intact.
func (r *memberRepository) Purge(ctx context.Context, memberIDs []int64) error {
	if len(memberIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`DELETE FROM notice_histories WHERE member_id IN (?)`,
		`DELETE FROM member_devices WHERE member_id IN (?)`,
		`DELETE FROM publications WHERE book_id IN (SELECT id FROM books WHERE member_id IN (?))`,
		`DELETE FROM book_contents WHERE book_chapter_id IN (
			SELECT bc.id FROM book_chapters bc
			JOIN books b ON bc.book_id = b.id
			WHERE b.member_id IN (?))`,
		`DELETE FROM book_chapters WHERE book_id IN (SELECT id FROM books WHERE member_id IN (?))`,
		`DELETE FROM books WHERE member_id IN (?)`,
		`DELETE FROM member_metadatas WHERE member_id IN (?)`,
		`DELETE FROM members WHERE id IN (?)`,
	}

	for _, stmt := range statements {
		query, args, err := sqlx.In(stmt, memberIDs)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("failed to purge members: %w", err)
		}
	}

	return tx.Commit()
}
