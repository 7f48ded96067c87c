package datarecording

import (
	"os"
	"strings"
	"time"
)

const runTable = "run_info"

// RunInfo is one property of a simulation run.
type RunInfo struct {
	Property string
	Value    string
}

// RunRecorder records how and when a simulation was started.
type RunRecorder struct {
	recorder DataRecorder
	entries  []RunInfo
}

// NewRunRecorder creates the run table in the recorder.
func NewRunRecorder(recorder DataRecorder) *RunRecorder {
	recorder.CreateTable(runTable, RunInfo{})

	return &RunRecorder{recorder: recorder}
}

// Start notes the start time, the command line, and the working directory.
func (r *RunRecorder) Start() {
	r.Set("Start Time", now())
	r.Set("Command", strings.Join(os.Args, " "))

	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	r.Set("Working Directory", wd)
}

// Set adds a property of the run, such as a configuration value.
func (r *RunRecorder) Set(property, value string) {
	r.entries = append(r.entries, RunInfo{Property: property, Value: value})
}

// End writes all properties with the end time.
func (r *RunRecorder) End() {
	r.Set("End Time", now())

	for _, entry := range r.entries {
		r.recorder.InsertData(runTable, entry)
	}

	r.entries = nil

	r.recorder.Flush()
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
