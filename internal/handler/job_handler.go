package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"lifebookshelf-sync/internal/domain"
	"lifebookshelf-sync/internal/service/cleanup"
	"lifebookshelf-sync/internal/service/publication"
	"lifebookshelf-sync/internal/service/reconcile"
)

type JobHandler struct {
	reconcileSvc   reconcile.Service
	publicationSvc publication.Service
	cleanupSvc     cleanup.Service
}

func NewJobHandler(reconcileSvc reconcile.Service, publicationSvc publication.Service, cleanupSvc cleanup.Service) *JobHandler {
	return &JobHandler{
		reconcileSvc:   reconcileSvc,
		publicationSvc: publicationSvc,
		cleanupSvc:     cleanupSvc,
	}
}

// SyncPublicationStatus runs one reconciliation pass. Schedule-triggered; the
// request body is ignored. A run with nothing to do is still a success.
func (h *JobHandler) SyncPublicationStatus(c *fiber.Ctx) error {
	summary, err := h.reconcileSvc.Run(c.Context())
	if err != nil {
		log.Printf("publication status sync failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "publication status sync failed")
	}

	if summary.Updated == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": fmt.Sprintf("no changes across %d publications", summary.MirrorTotal),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("synchronized %d of %d publications", summary.Updated, summary.MirrorTotal),
	})
}

func (h *JobHandler) ProcessNewPublication(c *fiber.Ctx) error {
	var body struct {
		PublicationID int64 `json:"publication_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.PublicationID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "publication_id is required")
	}

	pub, err := h.publicationSvc.Process(c.Context(), body.PublicationID)
	if errors.Is(err, domain.ErrPublicationNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "publication not found")
	}
	if err != nil {
		log.Printf("new publication processing failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "new publication processing failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("publication processed successfully: %d", pub.PublicationID),
	})
}

func (h *JobHandler) CleanupMembers(c *fiber.Ctx) error {
	deleted, err := h.cleanupSvc.Run(c.Context())
	if err != nil {
		log.Printf("member cleanup failed: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "member cleanup failed")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": fmt.Sprintf("successfully deleted %d members", deleted),
	})
}
