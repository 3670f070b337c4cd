package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"lifebookshelf-sync/internal/domain"
)

type NoticeRepository interface {
	Create(ctx context.Context, notice *domain.NoticeHistory) error
}

type noticeRepository struct {
	db *sqlx.DB
}

func NewNoticeRepository(db *sqlx.DB) NoticeRepository {
	return &noticeRepository{db: db}
}

func (r *noticeRepository) Create(ctx context.Context, notice *domain.NoticeHistory) error {
	query := `
		INSERT INTO notice_histories (member_id, title, content, received_at, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return r.db.QueryRowxContext(ctx, query,
		notice.MemberID, notice.Title, notice.Content, notice.ReceivedAt, notice.IsRead,
	).Scan(&notice.ID)
}
