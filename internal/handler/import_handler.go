package handler

import (
	"os"
	"path/filepath"
	"strings"

	"catalog-api/internal/jobstore"
	"catalog-api/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Submitter starts a background import. importer.Importer satisfies it.
type Submitter interface {
	Submit(jobID, path string)
}

type ImportHandler struct {
	jobs      jobstore.Store
	importer  Submitter
	uploadDir string
	log       *logrus.Logger
}

func NewImportHandler(jobs jobstore.Store, importer Submitter, uploadDir string, log *logrus.Logger) *ImportHandler {
	return &ImportHandler{jobs: jobs, importer: importer, uploadDir: uploadDir, log: log}
}

// Upload stores the CSV under the job id and hands it to the importer.
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No file uploaded")
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".csv") {
		return errorJSON(c, fiber.StatusBadRequest, "Only CSV allowed")
	}

	jobID := uuid.NewString()
	path := filepath.Join(h.uploadDir, jobID+".csv")
	entry := h.log.WithFields(logrus.Fields{"job_id": jobID, "filename": file.Filename, "size": file.Size})

	if err := c.SaveFile(file, path); err != nil {
		entry.WithError(err).Error("failed to save upload")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save file")
	}

	if _, err := h.jobs.Create(c.UserContext(), jobID); err != nil {
		_ = os.Remove(path)
		entry.WithError(err).Error("failed to create job")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to create import job")
	}

	h.importer.Submit(jobID, path)
	entry.Info("import queued")

	return c.JSON(fiber.Map{"job_id": jobID})
}

// JobStatus always answers 200; unknown ids and store failures report the
// unknown status.
func (h *ImportHandler) JobStatus(c *fiber.Ctx) error {
	jobID := c.Params("job_id")
	job, err := h.jobs.Get(c.UserContext(), jobID)
	if err != nil {
		h.log.WithError(err).WithField("job_id", jobID).Warn("failed to read job status")
		return c.JSON(model.UnknownJob(jobID))
	}
	return c.JSON(job)
}
