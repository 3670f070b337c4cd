package service

import (
	"firebase.google.com/go/v4/messaging"
	"github.com/jomei/notionapi"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"lifebookshelf-sync/internal/config"
	"lifebookshelf-sync/internal/repository"
	"lifebookshelf-sync/internal/service/chat"
	"lifebookshelf-sync/internal/service/cleanup"
	"lifebookshelf-sync/internal/service/cover"
	"lifebookshelf-sync/internal/service/email"
	"lifebookshelf-sync/internal/service/mirror"
	"lifebookshelf-sync/internal/service/publication"
	"lifebookshelf-sync/internal/service/push"
	"lifebookshelf-sync/internal/service/reconcile"
)

type Services struct {
	Reconcile   reconcile.Service
	Publication publication.Service
	Cleanup     cleanup.Service

	Mirror mirror.Service
	Push   push.Service
	Chat   chat.Service
	Email  email.Service
	Cover  cover.Resolver
}

func NewServices(
	repos *repository.Repositories,
	rdb *redis.Client,
	minioClient *minio.Client,
	notionClient *notionapi.Client,
	fcmClient *messaging.Client,
	cfg *config.Config,
) *Services {
	mirrorService := mirror.NewService(notionClient, cfg.NotionDatabaseID)
	chatService := chat.NewService(cfg.DiscordWebhookURL)
	emailService := email.NewService(cfg)

	var statter cover.ObjectStatter
	if minioClient != nil {
		statter = minioClient
	}
	coverResolver := cover.NewResolver(statter, cfg)

	pushService := push.NewService(fcmClient, repos.Notice, coverResolver, push.NewRedisDeadLetter(rdb))

	return &Services{
		Reconcile:   reconcile.NewService(repos.Publication, mirrorService, pushService, chatService),
		Publication: publication.NewService(repos.Publication, repos.Book, mirrorService, emailService, pushService, chatService, coverResolver),
		Cleanup:     cleanup.NewService(repos.Member, chatService, cfg.MemberRetentionDays),
		Mirror:      mirrorService,
		Push:        pushService,
		Chat:        chatService,
		Email:       emailService,
		Cover:       coverResolver,
	}
}
