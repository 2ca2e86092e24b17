package jobs

import (
	"errors"
	"strconv"

	"github.com/getevo/evo/v2"
	"github.com/iesreza/stayhub-backend/lib/response"
)

// JobInfo describes a registered job for the admin API
type JobInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
	Enabled     bool   `json:"enabled"`
	IsRunning   bool   `json:"is_running"`
}

// ListJobs returns all registered jobs with their status
// GET /api/admin/jobs
func ListJobs(r *evo.Request) any {
	s := GetScheduler()
	if s == nil {
		return response.OK([]JobInfo{})
	}

	jobs := s.GetJobs()
	infos := make([]JobInfo, 0, len(jobs))
	for _, job := range jobs {
		infos = append(infos, JobInfo{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
			Enabled:     job.Enabled,
			IsRunning:   s.IsRunning(job.Name),
		})
	}

	// Trigger lazy cleanup of old logs
	go CleanupOldLogs()

	return response.List(infos, len(infos))
}

// TriggerJob starts a job immediately. Execution is asynchronous; poll the
// status endpoint for the outcome.
// POST /api/admin/jobs/:name/run
func TriggerJob(r *evo.Request) any {
	jobName := r.Param("name").String()
	if jobName == "" {
		return response.BadRequest(r, "Job name is required")
	}

	s := GetScheduler()
	if s == nil {
		return response.ServiceUnavailable(r, "Scheduler is not running")
	}

	if err := s.RunNow(jobName); err != nil {
		if errors.Is(err, ErrUnknownJob) {
			return response.NotFound(r, "Job not found")
		}
		return response.InternalError(r, err.Error())
	}

	return response.OK(map[string]any{
		"job":    jobName,
		"status": "triggered",
	})
}

// GetJobHistory returns execution history for a job
// GET /api/admin/jobs/:name/history
func GetJobHistory(r *evo.Request) any {
	jobName := r.Param("name").String()

	limitStr := r.Query("limit").String()
	limit := 20
	if limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	executions, err := GetExecutionHistory(jobName, limit)
	if err != nil {
		return response.InternalError(r, err.Error())
	}

	return response.List(executions, len(executions))
}

// GetJobStatus returns the current status of a job
// GET /api/admin/jobs/:name/status
func GetJobStatus(r *evo.Request) any {
	jobName := r.Param("name").String()
	if jobName == "" {
		return response.BadRequest(r, "Job name is required")
	}

	s := GetScheduler()
	if s == nil {
		return response.ServiceUnavailable(r, "Scheduler is not running")
	}

	job, exists := s.GetJobs()[jobName]
	if !exists {
		return response.NotFound(r, "Job not found")
	}

	lastExec, _ := GetLastExecution(jobName)

	return response.OK(map[string]interface{}{
		"name":           job.Name,
		"description":    job.Description,
		"schedule":       job.Schedule,
		"enabled":        job.Enabled,
		"is_running":     s.IsRunning(jobName),
		"locked_by":      s.LockOwner(jobName),
		"last_execution": lastExec,
	})
}
