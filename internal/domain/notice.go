package domain

import "time"

// NotificationIntent is the per-member unit of outbound communication derived
// from one publication change. DeviceToken is nil when the member has no
// registered device; such intents are skipped, not errors.
type NotificationIntent struct {
	PublicationID int64
	MemberID      int64
	MemberName    string
	BookTitle     string
	CoverImageKey string
	PublishStatus PublishStatus
	DeviceToken   *string
}

// NoticeHistory is the in-app audit record written for every notification the
// service attempted to deliver.
type NoticeHistory struct {
	ID         int64     `db:"id"`
	MemberID   int64     `db:"member_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	ReceivedAt time.Time `db:"received_at"`
	IsRead     bool      `db:"is_read"`
}
