package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v3"

	"lifebookshelf-sync/internal/config"
	"lifebookshelf-sync/internal/domain"
)

type Service interface {
	SendNewPublicationEmail(ctx context.Context, pub *domain.Publication, coverURL string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

var newPublicationTmpl = template.Must(template.New("new_publication").Parse(`
<h2>새 출판 요청이 접수되었습니다.</h2>
<p><strong>출판 ID:</strong> {{.PublicationID}}</p>
<p><strong>고객 이메일:</strong> {{.MemberEmail}}</p>
<p><strong>책 제목:</strong> {{.BookTitle}}</p>
<p><strong>페이지 수:</strong> {{.PageCount}}</p>
{{if .CoverURL}}<p><strong>책 커버 이미지 주소:</strong> <a href="{{.CoverURL}}">{{.CoverURL}}</a></p>{{end}}
<p><strong>가격(원):</strong> {{.Price}}</p>
<p><strong>출판 요청일:</strong> {{.RequestedAt}}</p>
<p><strong>예상 출판일:</strong> {{.WillPublishAt}}</p>
<p><strong>출판 상태:</strong> {{.StatusLabel}}</p>
`))

func (s *service) SendNewPublicationEmail(ctx context.Context, pub *domain.Publication, coverURL string) error {
	label, err := pub.PublishStatus.Label()
	if err != nil {
		return err
	}

	data := struct {
		PublicationID int64
		MemberEmail   string
		BookTitle     string
		PageCount     int
		CoverURL      string
		Price         int64
		RequestedAt   string
		WillPublishAt string
		StatusLabel   string
	}{
		PublicationID: pub.PublicationID,
		MemberEmail:   pub.MemberEmail,
		BookTitle:     pub.BookTitle,
		PageCount:     pub.PageCount,
		CoverURL:      coverURL,
		Price:         pub.Price,
		RequestedAt:   pub.RequestedAt.Format(time.RFC3339),
		WillPublishAt: pub.WillPublishAt.Format(time.RFC3339),
		StatusLabel:   label,
	}

	var body bytes.Buffer
	if err := newPublicationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Lifebookshelf <%s>", s.config.FromEmail),
		To:      []string{s.config.StaffEmail},
		Html:    body.String(),
		Subject: "새 출판 요청이 접수되었습니다.",
	}

	_, err = s.client.Emails.Send(params)
	return err
}
