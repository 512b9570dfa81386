package task

// Status is the lifecycle state of a task.
type Status string

const (
	StatusNew     Status = "NEW"
	StatusRunning Status = "RUNNING"
	StatusOK      Status = "OK"
	StatusFailed  Status = "FAILED"
)

func (s Status) String() string {
	return string(s)
}

// Done reports whether the task reached a terminal state.
func (s Status) Done() bool {
	return s == StatusOK || s == StatusFailed
}
