package handler

import "lifebookshelf-sync/internal/service"

type Handlers struct {
	Job *JobHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Job: NewJobHandler(services.Reconcile, services.Publication, services.Cleanup),
	}
}
