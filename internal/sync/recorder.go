package sync

import "time"

// Recorder observes sync attempts and background tasks
type Recorder interface {
	SyncCompleted(outcome Outcome, elapsed time.Duration)
	TaskStarted(name string)
	TaskFinished(name string, err error, panicked bool)
}

// NopRecorder discards everything
type NopRecorder struct{}

func (NopRecorder) SyncCompleted(Outcome, time.Duration) {}
func (NopRecorder) TaskStarted(string)                  {}
func (NopRecorder) TaskFinished(string, error, bool)    {}
