package chat

import (
	"fmt"
	"log"
	"time"

	"github.com/gtuk/discordwebhook"

	"lifebookshelf-sync/internal/domain"
)

const username = "lifebookshelf-sync"

// Service posts human-readable run summaries to the operations channel.
// Every send is best effort: failures are logged and swallowed, a run's
// outcome never depends on the channel being reachable.
type Service interface {
	AnnounceSyncResult(updates []domain.PublicationUpdate, mirrorTotal int)
	AnnounceNothingToSync(mirrorTotal int)
	AnnounceNewPublication(pub *domain.Publication)
	AnnounceCleanup(members []domain.Member)
}

type service struct {
	webhookURL string
}

func NewService(webhookURL string) Service {
	return &service{webhookURL: webhookURL}
}

func (s *service) AnnounceSyncResult(updates []domain.PublicationUpdate, mirrorTotal int) {
	fields := make([]discordwebhook.Field, 0, len(updates))
	for _, u := range updates {
		fields = append(fields, discordwebhook.Field{
			Name: str(fmt.Sprintf("출판 ID %d", u.PublicationID)),
			Value: str(fmt.Sprintf("%s → %s\n출판일: %s → %s",
				u.PreviousPublishStatus, u.NewPublishStatus,
				formatDate(u.PreviousPublishedAt), formatDate(u.NewPublishedAt))),
		})
	}

	s.send(discordwebhook.Embed{
		Title:       str("출판 상태가 갱신되었습니다"),
		Description: str(fmt.Sprintf("총 %d건 중 %d건의 출판 상태가 변경되었습니다.", mirrorTotal, len(updates))),
		Fields:      &fields,
	})
}

func (s *service) AnnounceNothingToSync(mirrorTotal int) {
	s.send(discordwebhook.Embed{
		Title:       str("변경된 출판 상태가 없습니다"),
		Description: str(fmt.Sprintf("총 %d건의 출판 상태를 확인했습니다. 변경 사항이 없습니다.", mirrorTotal)),
	})
}

func (s *service) AnnounceNewPublication(pub *domain.Publication) {
	label, err := pub.PublishStatus.Label()
	if err != nil {
		label = string(pub.PublishStatus)
	}

	fields := []discordwebhook.Field{
		{Name: str("Book Title"), Value: str(pub.BookTitle)},
		{Name: str("Member Name"), Value: str(pub.MemberName)},
		{Name: str("Member Email"), Value: str(pub.MemberEmail)},
		{Name: str("Publication Status"), Value: str(label)},
		{Name: str("Published At"), Value: str(formatDate(pub.PublishedAt))},
	}

	s.send(discordwebhook.Embed{
		Title:       str("새 출판 요청이 처리되었습니다"),
		Description: str(fmt.Sprintf("Publication ID: %d", pub.PublicationID)),
		Fields:      &fields,
	})
}

func (s *service) AnnounceCleanup(members []domain.Member) {
	if len(members) == 0 {
		s.send(discordwebhook.Embed{
			Title:       str("탈퇴한 회원이 없습니다"),
			Description: str("삭제할 회원이 없습니다."),
		})
		return
	}

	fields := make([]discordwebhook.Field, 0, len(members))
	for _, m := range members {
		fields = append(fields, discordwebhook.Field{
			Name: str("삭제될 회원"),
			Value: str(fmt.Sprintf("ID: %d\nName: %s\nEmail: %s\nDeletedAt: %s",
				m.ID, m.Name, m.Email, m.DeletedAt.Format(time.RFC3339))),
		})
	}

	s.send(discordwebhook.Embed{
		Title:       str("탈퇴한 회원 삭제를 진행합니다"),
		Description: str(fmt.Sprintf("총 %d명의 회원이 삭제됩니다.", len(members))),
		Fields:      &fields,
	})
}

func (s *service) send(embed discordwebhook.Embed) {
	if s.webhookURL == "" {
		return
	}
	message := discordwebhook.Message{
		Username: str(username),
		Embeds:   &[]discordwebhook.Embed{embed},
	}
	if err := discordwebhook.SendMessage(s.webhookURL, message); err != nil {
		log.Printf("chat: failed to send webhook: %v", err)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(time.RFC3339)
}

func str(s string) *string {
	return &s
}
