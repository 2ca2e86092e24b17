package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/getevo/evo/v2/lib/log"
	"github.com/nats-io/nats.go"
)

// lockBucket is the JetStream KV bucket coordinating job runs across
// instances. The TTL bounds how long a crashed instance can hold a job.
const (
	lockBucket = "stayhub_job_locks"
	lockTTL    = 30 * time.Minute
)

// LockManager ensures each scheduled job runs on exactly one instance at a
// time. Locks live in NATS KV keyed by job name, valued with the holder's
// instance ID.
type LockManager struct {
	kv         nats.KeyValue
	instanceID string
}

// NewLockManager binds to the lock bucket, creating it on first start.
func NewLockManager(js nats.JetStreamContext) (*LockManager, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context is nil")
	}

	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      lockBucket,
		Description: "Single-runner locks for scheduled jobs",
		TTL:         lockTTL,
	})
	if err != nil {
		// Another instance created the bucket first
		kv, err = js.KeyValue(lockBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to bind %s bucket: %w", lockBucket, err)
		}
	}

	log.Info("Job lock manager ready, instance %s", instanceID)
	return &LockManager{kv: kv, instanceID: instanceID}, nil
}

// TryLock attempts to take the lock for a job. KV Create is atomic, so at
// most one instance wins. Re-locking a job this instance already holds
// refreshes the TTL and succeeds.
func (lm *LockManager) TryLock(jobName string) bool {
	if _, err := lm.kv.Create(jobName, []byte(lm.instanceID)); err == nil {
		log.Debug("Job %s locked by %s", jobName, lm.instanceID)
		return true
	}

	entry, err := lm.kv.Get(jobName)
	if err != nil || string(entry.Value()) != lm.instanceID {
		return false
	}
	_, err = lm.kv.Put(jobName, []byte(lm.instanceID))
	return err == nil
}

// Unlock releases a job's lock if this instance holds it. Locks held by
// other instances are left alone.
func (lm *LockManager) Unlock(jobName string) {
	entry, err := lm.kv.Get(jobName)
	if err != nil || string(entry.Value()) != lm.instanceID {
		return
	}

	if err := lm.kv.Delete(jobName); err != nil {
		log.Warning("Failed to release lock for job %s: %v", jobName, err)
		return
	}
	log.Debug("Job %s unlocked", jobName)
}

// IsLocked reports whether any instance currently holds the job.
func (lm *LockManager) IsLocked(jobName string) bool {
	_, err := lm.kv.Get(jobName)
	return err == nil
}

// GetLockOwner returns the instance ID holding the job, empty when unlocked.
func (lm *LockManager) GetLockOwner(jobName string) string {
	entry, err := lm.kv.Get(jobName)
	if err != nil {
		return ""
	}
	return string(entry.Value())
}

// GetInstanceID returns this instance's ID as recorded in lock values and
// execution rows.
func (lm *LockManager) GetInstanceID() string {
	return lm.instanceID
}
