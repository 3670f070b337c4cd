package publication

import (
	"context"
	"fmt"
	"log"

	"lifebookshelf-sync/internal/domain"
	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service/chat"
	"lifebookshelf-sync/internal/service/cover"
	"lifebookshelf-sync/internal/service/email"
	"lifebookshelf-sync/internal/service/mirror"
	"lifebookshelf-sync/internal/service/push"
)

type Service interface {
	// Process mirrors one freshly requested publication into the editorial
	// dashboard, then notifies the staff inbox and the member's devices.
	Process(ctx context.Context, publicationID int64) (*domain.Publication, error)
}

type service struct {
	pubRepo  repository.PublicationRepository
	bookRepo repository.BookRepository
	mirror   mirror.Service
	email    email.Service
	push     push.Service
	chat     chat.Service
	cover    cover.Resolver
}

func NewService(
	pubRepo repository.PublicationRepository,
	bookRepo repository.BookRepository,
	mirrorSvc mirror.Service,
	emailSvc email.Service,
	pushSvc push.Service,
	chatSvc chat.Service,
	coverResolver cover.Resolver,
) Service {
	return &service{
		pubRepo:  pubRepo,
		bookRepo: bookRepo,
		mirror:   mirrorSvc,
		email:    emailSvc,
		push:     pushSvc,
		chat:     chatSvc,
		cover:    coverResolver,
	}
}

func (s *service) Process(ctx context.Context, publicationID int64) (*domain.Publication, error) {
	pub, err := s.pubRepo.GetDetails(ctx, publicationID)
	if err != nil {
		return nil, err
	}

	chapters, err := s.bookRepo.GetChapters(ctx, pub.BookID)
	if err != nil {
		return nil, fmt.Errorf("failed to load book chapters: %w", err)
	}

	coverURL := s.cover.Resolve(ctx, pub.CoverImageKey)

	if err := s.mirror.CreatePublicationPage(ctx, pub, chapters, coverURL); err != nil {
		return nil, err
	}

	// Dashboard page exists; everything from here is best effort.
	if err := s.email.SendNewPublicationEmail(ctx, pub, coverURL); err != nil {
		log.Printf("publication: failed to email staff about publication %d: %v", pub.PublicationID, err)
	}

	tokens, err := s.pubRepo.GetDeviceTokens(ctx, pub.MemberID)
	if err != nil {
		log.Printf("publication: failed to load device tokens for member %d: %v", pub.MemberID, err)
	} else if _, err := s.push.Notify(ctx, intentsForTokens(pub, tokens)); err != nil {
		log.Printf("publication: notification fan-out failed: %v", err)
	}

	s.chat.AnnounceNewPublication(pub)

	return pub, nil
}

func intentsForTokens(pub *domain.Publication, tokens []string) []domain.NotificationIntent {
	intents := make([]domain.NotificationIntent, 0, len(tokens))
	for _, token := range tokens {
		token := token
		intents = append(intents, domain.NotificationIntent{
			PublicationID: pub.PublicationID,
			MemberID:      pub.MemberID,
			MemberName:    pub.MemberName,
			BookTitle:     pub.BookTitle,
			CoverImageKey: pub.CoverImageKey,
			PublishStatus: pub.PublishStatus,
			DeviceToken:   &token,
		})
	}
	return intents
}
