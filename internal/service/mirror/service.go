package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"lifebookshelf-sync/internal/domain"
)

// Property names of the editorial dashboard database. The dashboard schema
// uses labeled slots, not positional columns, so every read goes through
// these keys.
const (
	propPublicationID = "출판 ID"
	propMemberName    = "고객명"
	propMemberEmail   = "고객 이메일"
	propBookTitle     = "책 제목"
	propPageCount     = "페이지 수"
	propCoverImageURL = "책 커버 이미지 주소"
	propPrice         = "가격(원)"
	propRequestedAt   = "출판 요청일"
	propWillPublishAt = "예상 출판일"
	propPublishStatus = "출판 상태"
	propPublishedAt   = "출판일"
)

type Service interface {
	// QueryPublications returns the dashboard's view of every publication,
	// sorted by request date descending.
	QueryPublications(ctx context.Context) ([]domain.MirroredPublication, error)
	// CreatePublicationPage mirrors one publication into the dashboard,
	// including the full manuscript as page content.
	CreatePublicationPage(ctx context.Context, pub *domain.Publication, chapters []domain.BookChapter, coverURL string) error
}

type service struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
}

func NewService(client *notionapi.Client, databaseID string) Service {
	return &service{
		client:     client,
		databaseID: notionapi.DatabaseID(databaseID),
	}
}

func (s *service) QueryPublications(ctx context.Context) ([]domain.MirroredPublication, error) {
	var publications []domain.MirroredPublication

	request := &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{Property: propRequestedAt, Direction: notionapi.SortOrderDESC},
		},
	}

	for {
		response, err := s.client.Database.Query(ctx, s.databaseID, request)
		if err != nil {
			return nil, fmt.Errorf("failed to query dashboard database: %w", err)
		}

		for _, page := range response.Results {
			publication, err := publicationFromPage(page)
			if err != nil {
				return nil, err
			}
			publications = append(publications, publication)
		}

		if !response.HasMore {
			break
		}
		request.StartCursor = response.NextCursor
	}

	return publications, nil
}

// publicationFromPage normalizes one dashboard row. Every field lookup
// tolerates absence and falls back to a zero value, except the status label:
// an unknown label there is external drift and aborts the whole run.
func publicationFromPage(page notionapi.Page) (domain.MirroredPublication, error) {
	props := page.Properties

	status, err := domain.ParsePublishStatus(selectName(props, propPublishStatus))
	if err != nil {
		return domain.MirroredPublication{}, err
	}

	return domain.MirroredPublication{
		PublicationID: int64(numberValue(props, propPublicationID)),
		MemberName:    titleValue(props, propMemberName),
		MemberEmail:   emailValue(props, propMemberEmail),
		BookTitle:     richTextValue(props, propBookTitle),
		PageCount:     int(numberValue(props, propPageCount)),
		CoverImageURL: urlValue(props, propCoverImageURL),
		Price:         int64(numberValue(props, propPrice)),
		RequestedAt:   dateValue(props, propRequestedAt),
		WillPublishAt: dateValue(props, propWillPublishAt),
		PublishStatus: status,
		PublishedAt:   dateValue(props, propPublishedAt),
	}, nil
}

func numberValue(props notionapi.Properties, key string) float64 {
	p, ok := props[key].(*notionapi.NumberProperty)
	if !ok {
		return 0
	}
	return p.Number
}

func titleValue(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.TitleProperty)
	if !ok || len(p.Title) == 0 || p.Title[0].Text == nil {
		return ""
	}
	return p.Title[0].Text.Content
}

func richTextValue(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.RichTextProperty)
	if !ok || len(p.RichText) == 0 || p.RichText[0].Text == nil {
		return ""
	}
	return p.RichText[0].Text.Content
}

func emailValue(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.EmailProperty)
	if !ok {
		return ""
	}
	return p.Email
}

func urlValue(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.URLProperty)
	if !ok {
		return ""
	}
	return p.URL
}

func selectName(props notionapi.Properties, key string) string {
	p, ok := props[key].(*notionapi.SelectProperty)
	if !ok {
		return ""
	}
	return p.Select.Name
}

func dateValue(props notionapi.Properties, key string) *time.Time {
	p, ok := props[key].(*notionapi.DateProperty)
	if !ok || p.Date == nil || p.Date.Start == nil {
		return nil
	}
	t := time.Time(*p.Date.Start)
	return &t
}

func (s *service) CreatePublicationPage(ctx context.Context, pub *domain.Publication, chapters []domain.BookChapter, coverURL string) error {
	label, err := pub.PublishStatus.Label()
	if err != nil {
		return err
	}

	properties := notionapi.Properties{
		propPublicationID: &notionapi.NumberProperty{Number: float64(pub.PublicationID)},
		propMemberName: &notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: pub.MemberName}}},
		},
		propMemberEmail: &notionapi.EmailProperty{Email: pub.MemberEmail},
		propBookTitle: &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: pub.BookTitle}}},
		},
		propPageCount: &notionapi.NumberProperty{Number: float64(pub.PageCount)},
		propPrice:     &notionapi.NumberProperty{Number: float64(pub.Price)},
		propRequestedAt: &notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: notionDate(pub.RequestedAt)},
		},
		propWillPublishAt: &notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: notionDate(pub.WillPublishAt)},
		},
		propPublishStatus: &notionapi.SelectProperty{
			Select: notionapi.Option{Name: label},
		},
	}
	if coverURL != "" {
		properties[propCoverImageURL] = &notionapi.URLProperty{URL: coverURL}
	}

	_, err = s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: s.databaseID,
		},
		Properties: properties,
		Children:   manuscriptBlocks(chapters),
	})
	if err != nil {
		return fmt.Errorf("failed to create dashboard page: %w", err)
	}
	return nil
}

// Notion caps a rich-text block at 2000 characters, so page content is split
// into paragraph blocks of at most that size.
const maxBlockLen = 2000

func manuscriptBlocks(chapters []domain.BookChapter) []notionapi.Block {
	var blocks []notionapi.Block
	for _, chapter := range chapters {
		blocks = append(blocks, &notionapi.Heading1Block{
			BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading1},
			Heading1: notionapi.Heading{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{
					Content: fmt.Sprintf("Chapter %d: %s", chapter.Number, chapter.Name),
				}}},
			},
		})
		for _, page := range chapter.Pages {
			blocks = append(blocks, &notionapi.Heading2Block{
				BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading2},
				Heading2: notionapi.Heading{
					RichText: []notionapi.RichText{{Text: &notionapi.Text{
						Content: fmt.Sprintf("Page %d", page.Number),
					}}},
				},
			})
			for _, chunk := range chunkText(page.Content, maxBlockLen) {
				blocks = append(blocks, &notionapi.ParagraphBlock{
					BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeParagraph},
					Paragraph: notionapi.Paragraph{
						RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: chunk}}},
					},
				})
			}
		}
	}
	return blocks
}

func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	for len(runes) > size {
		chunks = append(chunks, string(runes[:size]))
		runes = runes[size:]
	}
	return append(chunks, string(runes))
}

func notionDate(t time.Time) *notionapi.Date {
	d := notionapi.Date(t)
	return &d
}
