package execution

// Status is the attempt lifecycle state of an execution.
type Status string

const (
	StatusQueued         Status = "queued"
	StatusRunning        Status = "running"
	StatusSucceeded      Status = "succeeded"
	StatusFailed         Status = "failed"
	StatusRetryScheduled Status = "retry_scheduled"
	StatusCanceled       Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusSucceeded, StatusFailed,
		StatusRetryScheduled, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether the execution will not move again.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// BackoffStrategy selects how the delay before a retry is computed.
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "fixed"
	BackoffExponential BackoffStrategy = "exponential"
	BackoffNone        BackoffStrategy = "none"
)

func (b BackoffStrategy) Valid() bool {
	switch b {
	case BackoffFixed, BackoffExponential, BackoffNone:
		return true
	}
	return false
}

// TriggerSource records what caused an execution to be created.
type TriggerSource string

const (
	TriggerProvider TriggerSource = "provider"
	TriggerRunNow   TriggerSource = "run_now"
	TriggerRetry    TriggerSource = "retry"
)
