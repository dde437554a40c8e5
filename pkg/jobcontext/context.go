package jobcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyJobID        KeyContext = "job_id"
	keyJobType      KeyContext = "job_type"
	keyWorkerID     KeyContext = "worker_id"
	keyUserID       KeyContext = "user_id"
	keyJobStartTime KeyContext = "job_start_time"
)

// DefaultTimeout bounds a job when the caller passes no timeout
const DefaultTimeout = 5 * time.Minute

// JobMetadata holds metadata for a background job execution
type JobMetadata struct {
	JobID     uuid.UUID
	JobType   string
	WorkerID  int
	UserID    uuid.UUID
	StartTime time.Time
}

// JobBegin derives a job context carrying its metadata and a timeout
func JobBegin(parentCtx context.Context, jobType string, workerID int, userID uuid.UUID, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)

	ctx = context.WithValue(ctx, keyJobID, uuid.New())
	ctx = context.WithValue(ctx, keyJobType, jobType)
	ctx = context.WithValue(ctx, keyWorkerID, workerID)
	ctx = context.WithValue(ctx, keyUserID, userID)
	ctx = context.WithValue(ctx, keyJobStartTime, time.Now())

	return ctx, cancel
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	jobID, ok := ctx.Value(keyJobID).(uuid.UUID)
	return jobID, ok
}

// GetJobType extracts job type from context
func GetJobType(ctx context.Context) (string, bool) {
	jobType, ok := ctx.Value(keyJobType).(string)
	return jobType, ok
}

// GetWorkerID extracts worker ID from context
func GetWorkerID(ctx context.Context) int {
	workerID, ok := ctx.Value(keyWorkerID).(int)
	if !ok {
		return -1
	}
	return workerID
}

// GetUserID extracts the user the job runs for
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(keyUserID).(uuid.UUID)
	return userID, ok
}

// GetJobStartTime extracts job start time from context
func GetJobStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(keyJobStartTime).(time.Time)
	return startTime, ok
}

// GetJobMetadata extracts all job metadata from context
func GetJobMetadata(ctx context.Context) *JobMetadata {
	jobID, _ := GetJobID(ctx)
	jobType, _ := GetJobType(ctx)
	userID, _ := GetUserID(ctx)
	startTime, _ := GetJobStartTime(ctx)

	return &JobMetadata{
		JobID:     jobID,
		JobType:   jobType,
		WorkerID:  GetWorkerID(ctx),
		UserID:    userID,
		StartTime: startTime,
	}
}

// LogFields returns the job metadata as zap fields
func LogFields(ctx context.Context) []zap.Field {
	md := GetJobMetadata(ctx)
	fields := []zap.Field{
		zap.String("job_id", md.JobID.String()),
		zap.String("job_type", md.JobType),
		zap.Int("worker_id", md.WorkerID),
		zap.String("user_id", md.UserID.String()),
	}
	if !md.StartTime.IsZero() {
		fields = append(fields, zap.Duration("elapsed", time.Since(md.StartTime)))
	}
	return fields
}
