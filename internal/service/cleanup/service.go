package cleanup

import (
	"context"
	"fmt"
	"log"
	"time"

	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service/chat"
)

type Service interface {
	// Run permanently deletes members whose withdrawal is past the retention
	// window. Returns how many members were removed.
	Run(ctx context.Context) (int, error)
}

type service struct {
	memberRepo    repository.MemberRepository
	chat          chat.Service
	retentionDays int
}

func NewService(memberRepo repository.MemberRepository, chatSvc chat.Service, retentionDays int) Service {
	return &service{
		memberRepo:    memberRepo,
		chat:          chatSvc,
		retentionDays: retentionDays,
	}
}

func (s *service) Run(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	members, err := s.memberRepo.FindDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to find withdrawn members: %w", err)
	}

	s.chat.AnnounceCleanup(members)

	if len(members) == 0 {
		log.Printf("cleanup: no withdrawn members past retention")
		return 0, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	if err := s.memberRepo.Purge(ctx, ids); err != nil {
		return 0, err
	}

	log.Printf("cleanup: deleted %d members", len(members))
	return len(members), nil
}
