package domain

import "time"

// Member is a soft-deleted account eligible for permanent removal.
type Member struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	DeletedAt time.Time `db:"deleted_at"`
}
