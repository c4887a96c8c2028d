package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds the totals recompute transaction so a
	// stuck statement lock cannot block the worker indefinitely.
	DefaultTransactionTimeout = 10 * time.Second

	// JobStateTTL is how long completed/failed job state stays queryable.
	JobStateTTL = 7 * 24 * time.Hour

	// QueueRedeliveryBudget is how many times the queue redelivers a job
	// after the first failed attempt.
	QueueRedeliveryBudget = 2
)
