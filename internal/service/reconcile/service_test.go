package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lifebookshelf-sync/internal/domain"
)

type mockPublicationRepo struct {
	mock.Mock
}

func (m *mockPublicationRepo) GetAllDetails(ctx context.Context) ([]domain.Publication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Publication), args.Error(1)
}

func (m *mockPublicationRepo) GetDetails(ctx context.Context, publicationID int64) (*domain.Publication, error) {
	args := m.Called(ctx, publicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Publication), args.Error(1)
}

func (m *mockPublicationRepo) GetDeviceTokens(ctx context.Context, memberID int64) ([]string, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPublicationRepo) ApplyUpdates(ctx context.Context, updates []domain.PublicationUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

type mockMirror struct {
	mock.Mock
}

func (m *mockMirror) QueryPublications(ctx context.Context) ([]domain.MirroredPublication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MirroredPublication), args.Error(1)
}

func (m *mockMirror) CreatePublicationPage(ctx context.Context, pub *domain.Publication, chapters []domain.BookChapter, coverURL string) error {
	args := m.Called(ctx, pub, chapters, coverURL)
	return args.Error(0)
}

type mockPush struct {
	mock.Mock
}

func (m *mockPush) Notify(ctx context.Context, intents []domain.NotificationIntent) ([]domain.NoticeHistory, error) {
	args := m.Called(ctx, intents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NoticeHistory), args.Error(1)
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) AnnounceSyncResult(updates []domain.PublicationUpdate, mirrorTotal int) {
	m.Called(updates, mirrorTotal)
}

func (m *mockChat) AnnounceNothingToSync(mirrorTotal int) {
	m.Called(mirrorTotal)
}

func (m *mockChat) AnnounceNewPublication(pub *domain.Publication) {
	m.Called(pub)
}

func (m *mockChat) AnnounceCleanup(members []domain.Member) {
	m.Called(members)
}

func TestReconcile_NothingToSync(t *testing.T) {
	pubRepo := new(mockPublicationRepo)
	mirrorSvc := new(mockMirror)
	pushSvc := new(mockPush)
	chatSvc := new(mockChat)

	svc := NewService(pubRepo, mirrorSvc, pushSvc, chatSvc)
	ctx := context.Background()

	publishedAt := timePtr(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	pubRepo.On("GetAllDetails", mock.Anything).Return([]domain.Publication{
		{PublicationID: 1, PublishStatus: domain.StatusPublished, PublishedAt: publishedAt},
	}, nil).Once()
	mirrorSvc.On("QueryPublications", mock.Anything).Return([]domain.MirroredPublication{
		{PublicationID: 1, PublishStatus: domain.StatusPublished, PublishedAt: publishedAt},
		{PublicationID: 99, PublishStatus: domain.StatusRequested},
	}, nil).Once()
	chatSvc.On("AnnounceNothingToSync", 2).Return().Once()

	summary, err := svc.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, Summary{MirrorTotal: 2}, summary)

	// No writes and no notifications on the no-op path.
	pubRepo.AssertNotCalled(t, "ApplyUpdates", mock.Anything, mock.Anything)
	pushSvc.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	chatSvc.AssertExpectations(t)
}

func TestReconcile_EndToEnd(t *testing.T) {
	pubRepo := new(mockPublicationRepo)
	mirrorSvc := new(mockMirror)
	pushSvc := new(mockPush)
	chatSvc := new(mockChat)

	svc := NewService(pubRepo, mirrorSvc, pushSvc, chatSvc)
	ctx := context.Background()

	token := "device-token-42"
	publishedAt := timePtr(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	pubRepo.On("GetAllDetails", mock.Anything).Return([]domain.Publication{
		{
			PublicationID: 42,
			MemberID:      7,
			MemberName:    "홍길동",
			BookTitle:     "나의 인생",
			CoverImageKey: "covers/42.jpg",
			PublishStatus: domain.StatusRequested,
			DeviceToken:   &token,
		},
	}, nil).Once()
	mirrorSvc.On("QueryPublications", mock.Anything).Return([]domain.MirroredPublication{
		{PublicationID: 42, PublishStatus: domain.StatusPublished, PublishedAt: publishedAt},
	}, nil).Once()

	expectedUpdate := domain.PublicationUpdate{
		PublicationID:         42,
		PreviousPublishStatus: domain.StatusRequested,
		PreviousPublishedAt:   nil,
		NewPublishStatus:      domain.StatusPublished,
		NewPublishedAt:        publishedAt,
	}
	pubRepo.On("ApplyUpdates", mock.Anything, []domain.PublicationUpdate{expectedUpdate}).Return(nil).Once()

	pushSvc.On("Notify", mock.Anything, mock.MatchedBy(func(intents []domain.NotificationIntent) bool {
		return len(intents) == 1 &&
			intents[0].PublicationID == 42 &&
			intents[0].MemberID == 7 &&
			intents[0].PublishStatus == domain.StatusPublished &&
			intents[0].DeviceToken != nil && *intents[0].DeviceToken == token
	})).Return([]domain.NoticeHistory{{MemberID: 7, Title: "출판 완료 알림"}}, nil).Once()

	chatSvc.On("AnnounceSyncResult", []domain.PublicationUpdate{expectedUpdate}, 1).Return().Once()

	summary, err := svc.Run(ctx)

	assert.NoError(t, err)
	assert.Equal(t, Summary{MirrorTotal: 1, Updated: 1, Notified: 1}, summary)

	pubRepo.AssertExpectations(t)
	mirrorSvc.AssertExpectations(t)
	pushSvc.AssertExpectations(t)
	chatSvc.AssertExpectations(t)
}

func TestReconcile_ReadFailureAbortsRun(t *testing.T) {
	pubRepo := new(mockPublicationRepo)
	mirrorSvc := new(mockMirror)
	pushSvc := new(mockPush)
	chatSvc := new(mockChat)

	svc := NewService(pubRepo, mirrorSvc, pushSvc, chatSvc)

	pubRepo.On("GetAllDetails", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	mirrorSvc.On("QueryPublications", mock.Anything).Return([]domain.MirroredPublication{}, nil).Maybe()

	_, err := svc.Run(context.Background())

	assert.Error(t, err)
	pubRepo.AssertNotCalled(t, "ApplyUpdates", mock.Anything, mock.Anything)
	pushSvc.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestReconcile_ApplyFailureSkipsNotifications(t *testing.T) {
	pubRepo := new(mockPublicationRepo)
	mirrorSvc := new(mockMirror)
	pushSvc := new(mockPush)
	chatSvc := new(mockChat)

	svc := NewService(pubRepo, mirrorSvc, pushSvc, chatSvc)

	pubRepo.On("GetAllDetails", mock.Anything).Return([]domain.Publication{
		{PublicationID: 1, PublishStatus: domain.StatusRequested},
	}, nil).Once()
	mirrorSvc.On("QueryPublications", mock.Anything).Return([]domain.MirroredPublication{
		{PublicationID: 1, PublishStatus: domain.StatusRejected},
	}, nil).Once()
	pubRepo.On("ApplyUpdates", mock.Anything, mock.Anything).Return(errors.New("deadlock")).Once()

	_, err := svc.Run(context.Background())

	assert.Error(t, err)
	pushSvc.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	chatSvc.AssertNotCalled(t, "AnnounceSyncResult", mock.Anything, mock.Anything)
}

func TestReconcile_PushFailureDoesNotFailRun(t *testing.T) {
	pubRepo := new(mockPublicationRepo)
	mirrorSvc := new(mockMirror)
	pushSvc := new(mockPush)
	chatSvc := new(mockChat)

	svc := NewService(pubRepo, mirrorSvc, pushSvc, chatSvc)

	pubRepo.On("GetAllDetails", mock.Anything).Return([]domain.Publication{
		{PublicationID: 1, PublishStatus: domain.StatusRequested},
	}, nil).Once()
	mirrorSvc.On("QueryPublications", mock.Anything).Return([]domain.MirroredPublication{
		{PublicationID: 1, PublishStatus: domain.StatusRejected},
	}, nil).Once()
	pubRepo.On("ApplyUpdates", mock.Anything, mock.Anything).Return(nil).Once()
	pushSvc.On("Notify", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	chatSvc.On("AnnounceSyncResult", mock.Anything, 1).Return().Once()

	summary, err := svc.Run(context.Background())

	// The transaction already committed; fan-out trouble is logged only.
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Notified)
	chatSvc.AssertExpectations(t)
}
