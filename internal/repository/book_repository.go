package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"lifebookshelf-sync/internal/domain"
)

type BookRepository interface {
	GetChapters(ctx context.Context, bookID int64) ([]domain.BookChapter, error)
}

type bookRepository struct {
	db *sqlx.DB
}

func NewBookRepository(db *sqlx.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) GetChapters(ctx context.Context, bookID int64) ([]domain.BookChapter, error) {
	rows := []struct {
		ChapterName   string `db:"chapter_name"`
		ChapterNumber int    `db:"chapter_number"`
		PageContent   string `db:"page_content"`
		PageNumber    int    `db:"page_number"`
	}{}

	query := `
		SELECT
			bc.name AS chapter_name,
			bc.number AS chapter_number,
			bcnt.page_content AS page_content,
			bcnt.page_number AS page_number
		FROM book_chapters bc
		JOIN book_contents bcnt ON bcnt.book_chapter_id = bc.id
		WHERE bc.book_id = $1
		ORDER BY bc.number, bcnt.page_number`
	if err := r.db.SelectContext(ctx, &rows, query, bookID); err != nil {
		return nil, err
	}

	var chapters []domain.BookChapter
	index := map[int]int{}
	for _, row := range rows {
		page := domain.BookPage{Number: row.PageNumber, Content: row.PageContent}
		if i, ok := index[row.ChapterNumber]; ok {
			chapters[i].Pages = append(chapters[i].Pages, page)
			continue
		}
		index[row.ChapterNumber] = len(chapters)
		chapters = append(chapters, domain.BookChapter{
			Name:   row.ChapterName,
			Number: row.ChapterNumber,
			Pages:  []domain.BookPage{page},
		})
	}

	return chapters, nil
}
