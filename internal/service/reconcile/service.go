package reconcile

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"lifebookshelf-sync/internal/domain"
	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service/chat"
	"lifebookshelf-sync/internal/service/mirror"
	"lifebookshelf-sync/internal/service/push"
)

// Summary is what one reconciliation run did.
type Summary struct {
	MirrorTotal int
	Updated     int
	Notified    int
}

type Service interface {
	// Run performs one reconciliation pass: load both views, diff, apply the
	// corrections in one transaction, then fan out notifications and the chat
	// summary. Everything after the commit is best effort and cannot fail the
	// run; everything before or inside the transaction aborts it.
	Run(ctx context.Context) (Summary, error)
}

type service struct {
	pubRepo repository.PublicationRepository
	mirror  mirror.Service
	push    push.Service
	chat    chat.Service
}

func NewService(pubRepo repository.PublicationRepository, mirrorSvc mirror.Service, pushSvc push.Service, chatSvc chat.Service) Service {
	return &service{
		pubRepo: pubRepo,
		mirror:  mirrorSvc,
		push:    pushSvc,
		chat:    chatSvc,
	}
}

func (s *service) Run(ctx context.Context) (Summary, error) {
	var (
		authoritative []domain.Publication
		mirrored      []domain.MirroredPublication
	)

	// The two reads have no ordering dependency, fetch them concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authoritative, err = s.pubRepo.GetAllDetails(gctx)
		if err != nil {
			return fmt.Errorf("failed to load publications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mirrored, err = s.mirror.QueryPublications(gctx)
		if err != nil {
			return fmt.Errorf("failed to load dashboard view: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	updates, err := BuildUpdates(authoritative, mirrored)
	if err != nil {
		return Summary{}, err
	}

	if len(updates) == 0 {
		log.Printf("reconcile: %d publications checked, nothing to sync", len(mirrored))
		s.chat.AnnounceNothingToSync(len(mirrored))
		return Summary{MirrorTotal: len(mirrored)}, nil
	}

	if err := s.pubRepo.ApplyUpdates(ctx, updates); err != nil {
		return Summary{}, err
	}
	log.Printf("reconcile: applied %d publication updates", len(updates))

	// The store of record is committed from here on. Notification and chat
	// failures are their own failure domain and never surface.
	records, err := s.push.Notify(ctx, buildIntents(updates, authoritative))
	if err != nil {
		log.Printf("reconcile: notification fan-out failed: %v", err)
	}

	s.chat.AnnounceSyncResult(updates, len(mirrored))

	return Summary{
		MirrorTotal: len(mirrored),
		Updated:     len(updates),
		Notified:    len(records),
	}, nil
}

// buildIntents joins each update with the authoritative record's member and
// device info, one intent per affected publication.
func buildIntents(updates []domain.PublicationUpdate, authoritative []domain.Publication) []domain.NotificationIntent {
	byID := make(map[int64]domain.Publication, len(authoritative))
	for _, pub := range authoritative {
		byID[pub.PublicationID] = pub
	}

	intents := make([]domain.NotificationIntent, 0, len(updates))
	for _, u := range updates {
		pub := byID[u.PublicationID]
		intents = append(intents, domain.NotificationIntent{
			PublicationID: u.PublicationID,
			MemberID:      pub.MemberID,
			MemberName:    pub.MemberName,
			BookTitle:     pub.BookTitle,
			CoverImageKey: pub.CoverImageKey,
			PublishStatus: u.NewPublishStatus,
			DeviceToken:   pub.DeviceToken,
		})
	}
	return intents
}
