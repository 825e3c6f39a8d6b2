package controller

import (
	"net/http"
	"time"

	"github.com/coprra/coprra/internal/http/middleware"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/repository"
	"github.com/coprra/coprra/internal/service"
	"github.com/gin-gonic/gin"
)

// JobController handles HTTP requests for background job management.
type JobController struct {
	jobs *service.JobService
}

// NewJobController creates a new JobController with the given job service.
func NewJobController(jobs *service.JobService) *JobController {
	return &JobController{jobs: jobs}
}

// CreateJobRequest represents the request body for enqueuing a job.
type CreateJobRequest struct {
	Operation string            `json:"operation" binding:"required"`
	Params    map[string]string `json:"params"`
}

// JobResponse represents the status of a background job.
type JobResponse struct {
	JobID     string         `json:"job_id"`
	Operation string         `json:"operation"`
	Status    string         `json:"status"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt string         `json:"updated_at"`
}

func toJobResponse(rec *model.JobRecord) JobResponse {
	return JobResponse{
		JobID:     rec.JobID,
		Operation: string(rec.Operation),
		Status:    string(rec.Status),
		Result:    rec.Result,
		Error:     rec.Error,
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateJob handles the HTTP POST request for enqueuing a heavy operation.
// The job is accepted for asynchronous execution, hence 202.
func (jc *JobController) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.CtxUserID)
	rec, err := jc.jobs.Enqueue(c.Request.Context(), userID, req.Operation, req.Params)
	if err != nil {
		if repository.IsValidation(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue job"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"data": toJobResponse(rec)})
}

// GetJob handles the HTTP GET request for a job's status.
func (jc *JobController) GetJob(c *gin.Context) {
	rec, err := jc.jobs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job status"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toJobResponse(rec)})
}

// CancelJob handles the HTTP DELETE request for cancelling a queued job.
func (jc *JobController) CancelJob(c *gin.Context) {
	rec, err := jc.jobs.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel job"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toJobResponse(rec)})
}

// ListJobs handles the HTTP GET request for the caller's job statuses.
func (jc *JobController) ListJobs(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)
	records, err := jc.jobs.UserStatuses(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}

	data := make([]JobResponse, 0, len(records))
	for i := range records {
		data = append(data, toJobResponse(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
