package execution

import "errors"

// ErrDuplicateTrace is returned by Repo.Create when an execution already
// exists for the same (schedule_id, trace_id) pair.
var ErrDuplicateTrace = errors.New("execution already recorded for trace id")
