package db

import "time"

// Startup connection retry.
const (
	ConnectionRetrySleep = 2 * time.Second
	maxConnectionRetries = 10
)

// Query limits
const (
	DefaultPendingReviewLimit = 20
	MaxPendingReviewLimit     = 100
	DefaultUnanalyzedLimit    = 10
)

// feedbackLockNamespace keeps per-feedback advisory keys apart from migrationLockID.
const feedbackLockNamespace int64 = 0x52655655 << 32

// Advisory lock settings
const (
	// AnalysisWorkerLockID elects a single pending-analysis worker across instances.
	AnalysisWorkerLockID int64 = 1001
	unlockTimeout              = 5 * time.Second
)
