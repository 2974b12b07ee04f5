package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"property-import-backend/internal/models"
)

// ImportService is the acquisition and import pipeline.
type ImportService interface {
	ScrapeProperties(ctx context.Context, source string) (models.ImportJob, []models.ScrapedListing, error)
	ImportPropertiesToDatabase(ctx context.Context, listings []models.ScrapedListing) ([]string, error)
	RunImport(ctx context.Context, source string) (models.ImportJob, []string, error)
	CommitSnapshot(ctx context.Context, jobID string) (models.ImportJob, []string, error)
	GetSnapshot(ctx context.Context, jobID string) ([]models.ScrapedListing, error)
	GetScrapingJobs() []models.ImportJob
	GetScrapingJob(id string) (models.ImportJob, bool)
}

type SourceLister interface {
	Names() []string
}

type ImportsHandler struct {
	service ImportService
	sources SourceLister
}

func NewImportsHandler(service ImportService, sources SourceLister) *ImportsHandler {
	return &ImportsHandler{service: service, sources: sources}
}

// ListSources godoc
// @Summary     List listing sources
// @Tags        imports
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SourceListResponse
// @Router      /imports/sources [get]
func (h *ImportsHandler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, models.SourceListResponse{Sources: h.sources.Names()})
}

// Scrape godoc
// @Summary     Scrape a source
// @Description Acquires listings from the named source and re-hosts their images.
// @Description Nothing is written to the document store.
// @Tags        imports
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ScrapeRequest true "Source to scrape"
// @Success     200 {object} models.ScrapeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /imports/scrape [post]
func (h *ImportsHandler) Scrape(c *gin.Context) {
	var req models.ScrapeRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	job, listings, err := h.service.ScrapeProperties(c.Request.Context(), req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ScrapeResponse{Job: job, Listings: listings})
}

// ImportProperties godoc
// @Summary     Import listings
// @Description Writes each listing to the document store. Rejected listings are skipped.
// @Tags        imports
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ImportPropertiesRequest true "Listings to import"
// @Success     200 {object} models.ImportPropertiesResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /imports/properties [post]
func (h *ImportsHandler) ImportProperties(c *gin.Context) {
	var req models.ImportPropertiesRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	ids, err := h.service.ImportPropertiesToDatabase(c.Request.Context(), req.Listings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ImportPropertiesResponse{
		PropertyIDs: ids,
		Requested:   len(req.Listings),
		Imported:    len(ids),
	})
}

// Run godoc
// @Summary     Scrape and import a source
// @Tags        imports
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.RunImportRequest true "Source to import"
// @Success     200 {object} models.RunImportResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /imports/run [post]
func (h *ImportsHandler) Run(c *gin.Context) {
	var req models.RunImportRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, "invalid request", err)
		return
	}

	job, ids, err := h.service.RunImport(c.Request.Context(), req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RunImportResponse{Job: job, PropertyIDs: ids})
}

// ListJobs godoc
// @Summary     List import jobs
// @Description Most recent first.
// @Tags        imports
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.JobListResponse
// @Router      /imports/jobs [get]
func (h *ImportsHandler) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: h.service.GetScrapingJobs()})
}

// GetJob godoc
// @Summary     Get an import job
// @Tags        imports
// @Produce     json
// @Security    Bearer
// @Param       job_id path string true "Job ID"
// @Success     200 {object} models.ImportJob
// @Failure     404 {object} models.ErrorResponse
// @Router      /imports/jobs/{job_id} [get]
func (h *ImportsHandler) GetJob(c *gin.Context) {
	job, ok := h.service.GetScrapingJob(c.Param("job_id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetSnapshot godoc
// @Summary     Get the archived listings of a completed job
// @Tags        imports
// @Produce     json
// @Security    Bearer
// @Param       job_id path string true "Job ID"
// @Success     200 {object} models.ScrapeResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     501 {object} models.ErrorResponse
// @Router      /imports/jobs/{job_id}/snapshot [get]
func (h *ImportsHandler) GetSnapshot(c *gin.Context) {
	jobID := c.Param("job_id")
	listings, err := h.service.GetSnapshot(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	job, _ := h.service.GetScrapingJob(jobID)
	c.JSON(http.StatusOK, models.ScrapeResponse{Job: job, Listings: listings})
}

// Commit godoc
// @Summary     Import the archived listings of a completed job
// @Tags        imports
// @Produce     json
// @Security    Bearer
// @Param       job_id path string true "Job ID"
// @Success     200 {object} models.RunImportResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     501 {object} models.ErrorResponse
// @Router      /imports/jobs/{job_id}/commit [post]
func (h *ImportsHandler) Commit(c *gin.Context) {
	job, ids, err := h.service.CommitSnapshot(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.RunImportResponse{Job: job, PropertyIDs: ids})
}
