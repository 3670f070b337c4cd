package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrPublicationNotFound = errors.New("publication not found")

// PublishStatus is the internal publishing lifecycle state. It is the single
// source for the display label shown in the editorial dashboard and for the
// push-notification copy, so the three mappings cannot drift apart.
type PublishStatus string

const (
	StatusRequested        PublishStatus = "REQUESTED"
	StatusRequestConfirmed PublishStatus = "REQUEST_CONFIRMED"
	StatusInPublishing     PublishStatus = "IN_PUBLISHING"
	StatusPublished        PublishStatus = "PUBLISHED"
	StatusRejected         PublishStatus = "REJECTED"
)

// ParsePublishStatus decodes the dashboard's display label. An unrecognized
// label means the editorial dashboard drifted from what this service knows
// and must never be absorbed silently.
func ParsePublishStatus(label string) (PublishStatus, error) {
	switch label {
	case "새 요청":
		return StatusRequested, nil
	case "요청 처리중":
		return StatusRequestConfirmed, nil
	case "출판중":
		return StatusInPublishing, nil
	case "출판 완료":
		return StatusPublished, nil
	case "출판 반려":
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("invalid publish status label: %q", label)
	}
}

// Label returns the display label used by the editorial dashboard.
func (s PublishStatus) Label() (string, error) {
	switch s {
	case StatusRequested:
		return "새 요청", nil
	case StatusRequestConfirmed:
		return "요청 처리중", nil
	case StatusInPublishing:
		return "출판중", nil
	case StatusPublished:
		return "출판 완료", nil
	case StatusRejected:
		return "출판 반려", nil
	default:
		return "", fmt.Errorf("unknown publish status: %q", string(s))
	}
}

// NoticeCopy is the member-facing title and body for one status.
type NoticeCopy struct {
	Title string
	Body  string
}

// NoticeCopy returns the push-notification copy for the status.
func (s PublishStatus) NoticeCopy() (NoticeCopy, error) {
	switch s {
	case StatusRequested:
		return NoticeCopy{
			Title: "출판 요청 접수 알림",
			Body:  "출판 요청이 접수되었습니다. 처리 완료 후 알림을 드리겠습니다.",
		}, nil
	case StatusRequestConfirmed:
		return NoticeCopy{
			Title: "출판 요청 확인 알림",
			Body:  "출판 요청이 정상적으로 확인되었습니다. 출판 준비가 진행됩니다.",
		}, nil
	case StatusInPublishing:
		return NoticeCopy{
			Title: "출판 진행 알림",
			Body:  "현재 출판이 진행 중입니다. 완료되면 알림을 드리겠습니다.",
		}, nil
	case StatusPublished:
		return NoticeCopy{
			Title: "출판 완료 알림",
			Body:  "축하합니다! 출판이 성공적으로 완료되었습니다.",
		}, nil
	case StatusRejected:
		return NoticeCopy{
			Title: "출판 요청 반려 알림",
			Body:  "출판 요청이 반려되었습니다. 자세한 내용은 관리자에게 문의하세요.",
		}, nil
	default:
		return NoticeCopy{}, fmt.Errorf("unknown publish status: %q", string(s))
	}
}

// Publication is the authoritative record from the store of record, joined
// with the owning member's profile and (at most one) registered device.
type Publication struct {
	PublicationID int64         `db:"publication_id"`
	BookID        int64         `db:"book_id"`
	MemberID      int64         `db:"member_id"`
	MemberName    string        `db:"member_name"`
	MemberEmail   string        `db:"member_email"`
	BookTitle     string        `db:"book_title"`
	PageCount     int           `db:"page_count"`
	CoverImageKey string        `db:"cover_image_key"`
	Price         int64         `db:"price"`
	RequestedAt   time.Time     `db:"requested_at"`
	WillPublishAt time.Time     `db:"will_publish_at"`
	PublishStatus PublishStatus `db:"publish_status"`
	PublishedAt   *time.Time    `db:"published_at"`
	DeviceToken   *string       `db:"device_token"`
}

// MirroredPublication is the editor-facing shadow copy of a publication as it
// stands in the editorial dashboard. Editors change status and publish date
// there; a divergence from the authoritative record is the signal to correct
// the store of record.
type MirroredPublication struct {
	PublicationID int64
	MemberName    string
	MemberEmail   string
	BookTitle     string
	PageCount     int
	CoverImageURL string
	Price         int64
	RequestedAt   *time.Time
	WillPublishAt *time.Time
	PublishStatus PublishStatus
	PublishedAt   *time.Time
}

// PublicationUpdate is one computed correction: both the previous and the new
// status/date pair, even when only one of the two fields actually changed.
type PublicationUpdate struct {
	PublicationID         int64
	PreviousPublishStatus PublishStatus
	PreviousPublishedAt   *time.Time
	NewPublishStatus      PublishStatus
	NewPublishedAt        *time.Time
}
