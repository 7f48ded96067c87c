package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many packets of a run are delivered and how many
// are still in flight. It is updated by the simulation goroutine and read by
// the web server.
type ProgressBar struct {
	lock       sync.Mutex
	id         string
	name       string
	startTime  time.Time
	total      uint64
	finished   uint64
	inProgress uint64
}

type progressRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// SetProgress records the number of finished and in-flight items.
func (b *ProgressBar) SetProgress(finished, inProgress uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished = finished
	b.inProgress = inProgress
}

// Total returns the number of items the bar expects.
func (b *ProgressBar) Total() uint64 {
	return b.total
}

func (b *ProgressBar) snapshot() progressRsp {
	b.lock.Lock()
	defer b.lock.Unlock()

	return progressRsp{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}
