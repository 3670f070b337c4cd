package mirror

import (
	"strings"
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"

	"lifebookshelf-sync/internal/domain"
)

func datePage(t time.Time) *notionapi.DateProperty {
	d := notionapi.Date(t)
	return &notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}

func TestPublicationFromPage(t *testing.T) {
	requestedAt := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	publishedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	page := notionapi.Page{Properties: notionapi.Properties{
		propPublicationID: &notionapi.NumberProperty{Number: 42},
		propMemberName: &notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: "홍길동"}}},
		},
		propMemberEmail: &notionapi.EmailProperty{Email: "hong@example.com"},
		propBookTitle: &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: "나의 인생"}}},
		},
		propPageCount:     &notionapi.NumberProperty{Number: 180},
		propCoverImageURL: &notionapi.URLProperty{URL: "https://cdn.example.com/42.jpg"},
		propPrice:         &notionapi.NumberProperty{Number: 15000},
		propRequestedAt:   datePage(requestedAt),
		propPublishStatus: &notionapi.SelectProperty{Select: notionapi.Option{Name: "출판 완료"}},
		propPublishedAt:   datePage(publishedAt),
	}}

	pub, err := publicationFromPage(page)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), pub.PublicationID)
	assert.Equal(t, "홍길동", pub.MemberName)
	assert.Equal(t, "hong@example.com", pub.MemberEmail)
	assert.Equal(t, "나의 인생", pub.BookTitle)
	assert.Equal(t, 180, pub.PageCount)
	assert.Equal(t, int64(15000), pub.Price)
	assert.Equal(t, domain.StatusPublished, pub.PublishStatus)
	assert.NotNil(t, pub.RequestedAt)
	assert.True(t, pub.RequestedAt.Equal(requestedAt))
	assert.NotNil(t, pub.PublishedAt)
	assert.True(t, pub.PublishedAt.Equal(publishedAt))
	// Will-publish date is absent from the page: zero value, no error.
	assert.Nil(t, pub.WillPublishAt)
}

func TestPublicationFromPage_MissingFieldsTolerated(t *testing.T) {
	page := notionapi.Page{Properties: notionapi.Properties{
		propPublishStatus: &notionapi.SelectProperty{Select: notionapi.Option{Name: "새 요청"}},
	}}

	pub, err := publicationFromPage(page)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), pub.PublicationID)
	assert.Empty(t, pub.MemberName)
	assert.Nil(t, pub.PublishedAt)
	assert.Equal(t, domain.StatusRequested, pub.PublishStatus)
}

func TestPublicationFromPage_UnknownStatusLabel(t *testing.T) {
	page := notionapi.Page{Properties: notionapi.Properties{
		propPublicationID: &notionapi.NumberProperty{Number: 1},
		propPublishStatus: &notionapi.SelectProperty{Select: notionapi.Option{Name: "알 수 없음"}},
	}}

	_, err := publicationFromPage(page)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "알 수 없음")
}

func TestPublicationFromPage_AbsentStatusRejected(t *testing.T) {
	_, err := publicationFromPage(notionapi.Page{Properties: notionapi.Properties{}})
	assert.Error(t, err)
}

func TestChunkText(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, chunkText("", maxBlockLen))
	})

	t.Run("Short", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, chunkText("hello", maxBlockLen))
	})

	t.Run("Long", func(t *testing.T) {
		chunks := chunkText(strings.Repeat("a", 4500), maxBlockLen)
		assert.Len(t, chunks, 3)
		assert.Len(t, chunks[0], 2000)
		assert.Len(t, chunks[2], 500)
	})

	t.Run("Multibyte Runes Stay Intact", func(t *testing.T) {
		chunks := chunkText(strings.Repeat("한", 2500), maxBlockLen)
		assert.Len(t, chunks, 2)
		assert.Equal(t, 2000, len([]rune(chunks[0])))
		assert.Equal(t, 500, len([]rune(chunks[1])))
	})
}

func TestManuscriptBlocks(t *testing.T) {
	chapters := []domain.BookChapter{
		{
			Name:   "어린 시절",
			Number: 1,
			Pages: []domain.BookPage{
				{Number: 1, Content: "첫 페이지"},
				{Number: 2, Content: strings.Repeat("가", 2100)},
			},
		},
	}

	blocks := manuscriptBlocks(chapters)

	// One chapter heading, two page headings, one paragraph for page one and
	// two chunked paragraphs for page two.
	assert.Len(t, blocks, 6)
	_, ok := blocks[0].(*notionapi.Heading1Block)
	assert.True(t, ok)
	_, ok = blocks[1].(*notionapi.Heading2Block)
	assert.True(t, ok)
	_, ok = blocks[2].(*notionapi.ParagraphBlock)
	assert.True(t, ok)
}
