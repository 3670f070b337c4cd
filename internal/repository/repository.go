package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Publication PublicationRepository
	Notice      NoticeRepository
	Member      MemberRepository
	Book        BookRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Publication: NewPublicationRepository(db),
		Notice:      NewNoticeRepository(db),
		Member:      NewMemberRepository(db),
		Book:        NewBookRepository(db),
	}
}
