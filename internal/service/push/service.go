package push

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"

	"lifebookshelf-sync/internal/domain"
	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service/cover"
)

// Sender is the slice of the Firebase messaging client the service needs.
type Sender interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type Service interface {
	// Notify delivers one push message per intent as a single batch and
	// persists one notice-history record per delivered message. It runs after
	// the authoritative transaction has committed: delivery and audit failures
	// are logged and recorded, never propagated as run failures. The only
	// returned error is an unknown status in the copy lookup, which the
	// strict mirror decode makes unreachable in practice.
	Notify(ctx context.Context, intents []domain.NotificationIntent) ([]domain.NoticeHistory, error)
}

type service struct {
	sender     Sender
	noticeRepo repository.NoticeRepository
	cover      cover.Resolver
	deadLetter DeadLetterRecorder
}

func NewService(sender Sender, noticeRepo repository.NoticeRepository, coverResolver cover.Resolver, deadLetter DeadLetterRecorder) Service {
	return &service{
		sender:     sender,
		noticeRepo: noticeRepo,
		cover:      coverResolver,
		deadLetter: deadLetter,
	}
}

func (s *service) Notify(ctx context.Context, intents []domain.NotificationIntent) ([]domain.NoticeHistory, error) {
	type pending struct {
		intent domain.NotificationIntent
		copy   domain.NoticeCopy
	}

	var (
		messages []*messaging.Message
		queued   []pending
	)

	for _, intent := range intents {
		if intent.DeviceToken == nil || *intent.DeviceToken == "" {
			log.Printf("push: member %d has no device token, skipping publication %d",
				intent.MemberID, intent.PublicationID)
			continue
		}

		noticeCopy, err := intent.PublishStatus.NoticeCopy()
		if err != nil {
			return nil, err
		}

		message := &messaging.Message{
			Notification: &messaging.Notification{
				Title: noticeCopy.Title,
				Body:  noticeCopy.Body,
			},
			Token: *intent.DeviceToken,
		}
		if imageURL := s.cover.Resolve(ctx, intent.CoverImageKey); imageURL != "" {
			message.Notification.ImageURL = imageURL
		}

		messages = append(messages, message)
		queued = append(queued, pending{intent: intent, copy: noticeCopy})
	}

	if len(messages) == 0 {
		log.Printf("push: nothing to deliver")
		return nil, nil
	}

	response, err := s.sender.SendEach(ctx, messages)
	if err != nil {
		log.Printf("push: batch send failed: %v", err)
		for _, p := range queued {
			s.record(ctx, p.intent, err)
		}
		return nil, nil
	}

	for i, result := range response.Responses {
		if !result.Success {
			log.Printf("push: delivery to member %d failed: %v",
				queued[i].intent.MemberID, result.Error)
			s.record(ctx, queued[i].intent, result.Error)
		}
	}
	log.Printf("push: sent %d messages (%d failed)", len(messages), response.FailureCount)

	var records []domain.NoticeHistory
	for _, p := range queued {
		notice := domain.NoticeHistory{
			MemberID:   p.intent.MemberID,
			Title:      p.copy.Title,
			Content:    p.copy.Body,
			ReceivedAt: time.Now(),
			IsRead:     false,
		}
		if err := s.noticeRepo.Create(ctx, &notice); err != nil {
			log.Printf("push: failed to record notice history for member %d: %v",
				p.intent.MemberID, err)
			continue
		}
		records = append(records, notice)
	}

	return records, nil
}

func (s *service) record(ctx context.Context, intent domain.NotificationIntent, cause error) {
	if s.deadLetter == nil {
		return
	}
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	s.deadLetter.Record(ctx, Failure{
		PublicationID: intent.PublicationID,
		MemberID:      intent.MemberID,
		Token:         *intent.DeviceToken,
		Reason:        reason,
		FailedAt:      time.Now(),
	})
}
