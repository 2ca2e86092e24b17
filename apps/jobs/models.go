package jobs

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of one job run.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobExecution is the persisted record of one job run. A row is written when
// the run starts and completed in place when it finishes, so crashed runs
// stay visible as "running" with no completion time.
type JobExecution struct {
	ID               uuid.UUID  `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	JobName          string     `gorm:"column:job_name;size:100;not null;index:idx_job_started,priority:1" json:"job_name"`
	InstanceID       string     `gorm:"column:instance_id;size:100;not null" json:"instance_id"`
	Status           JobStatus  `gorm:"column:status;size:20;not null;default:running" json:"status"`
	StartedAt        time.Time  `gorm:"column:started_at;not null;index:idx_job_started,priority:2" json:"started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at"`
	DurationMs       int64      `gorm:"column:duration_ms;default:0" json:"duration_ms"`
	RecordsProcessed int        `gorm:"column:records_processed;default:0" json:"records_processed"`
	Error            string     `gorm:"column:error;type:text" json:"error,omitempty"`
	Metadata         string     `gorm:"column:metadata;type:json" json:"metadata,omitempty"`
}

func (JobExecution) TableName() string {
	return "job_executions"
}

// JobDefinition declares a scheduled job: what to run, when, and for how
// long at most. Definitions are registered at startup; the settings table
// can later override Schedule and Enabled per job.
type JobDefinition struct {
	Name        string
	Description string
	Schedule    string // cron expression, with seconds
	Timeout     time.Duration
	Handler     JobHandler
	Enabled     bool
}

// JobHandler runs one job. Returning an error marks the execution failed.
type JobHandler func(ctx *JobContext) error

// JobContext carries per-run state a handler can report back: a processed
// counter and free-form metadata, both folded into the execution row.
type JobContext struct {
	JobName     string
	ExecutionID uuid.UUID
	StartedAt   time.Time
	processed   int
	metadata    map[string]interface{}
}

func NewJobContext(jobName string, executionID uuid.UUID) *JobContext {
	return &JobContext{
		JobName:     jobName,
		ExecutionID: executionID,
		StartedAt:   time.Now(),
		metadata:    make(map[string]interface{}),
	}
}

// IncrementProcessed adds to the run's processed-records counter.
func (ctx *JobContext) IncrementProcessed(count int) {
	ctx.processed += count
}

func (ctx *JobContext) GetProcessed() int {
	return ctx.processed
}

// SetMetadata records a detail of the run, serialized onto the execution row.
func (ctx *JobContext) SetMetadata(key string, value interface{}) {
	ctx.metadata[key] = value
}

func (ctx *JobContext) GetMetadata() map[string]interface{} {
	return ctx.metadata
}
