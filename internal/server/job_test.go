package server

import (
	"testing"
	"time"
)

func TestCreateAndGetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(JobConfig{Objective: "sphere", NumEvals: 10})
	if job.ID == "" {
		t.Fatal("job should get an ID")
	}
	if job.State != StatePending {
		t.Errorf("new job state = %s, want %s", job.State, StatePending)
	}

	got, exists := jm.GetJob(job.ID)
	if !exists {
		t.Fatal("created job not retrievable")
	}
	if got.Config.Objective != "sphere" {
		t.Errorf("config lost: %+v", got.Config)
	}

	if _, exists := jm.GetJob("no-such-id"); exists {
		t.Error("unknown ID should not resolve")
	}
}

func TestUpdateJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(JobConfig{Objective: "sphere"})

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.NumEvals = 5
	})
	if err != nil {
		t.Fatalf("UpdateJob failed: %v", err)
	}

	got, _ := jm.GetJob(job.ID)
	if got.State != StateRunning || got.NumEvals != 5 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := jm.UpdateJob("no-such-id", func(*Job) {}); err == nil {
		t.Error("updating an unknown job should fail")
	}
}

func TestGetRunningJobs(t *testing.T) {
	jm := NewJobManager()
	a := jm.CreateJob(JobConfig{Objective: "sphere"})
	jm.CreateJob(JobConfig{Objective: "sphere"})

	jm.UpdateJob(a.ID, func(j *Job) { j.State = StateRunning })

	running := jm.GetRunningJobs()
	if len(running) != 1 || running[0].ID != a.ID {
		t.Errorf("expected only the running job, got %d jobs", len(running))
	}
}

func TestBroadcasterDeliversEvents(t *testing.T) {
	eb := NewEventBroadcaster()

	ch := eb.Subscribe("job-1")
	defer eb.Unsubscribe("job-1", ch)

	sent := ProgressEvent{JobID: "job-1", State: StateRunning, NumEvals: 4, Timestamp: time.Now()}
	eb.Broadcast(sent)

	select {
	case got := <-ch:
		if got.NumEvals != 4 || got.State != StateRunning {
			t.Errorf("event changed in transit: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBroadcasterReplaysLastEvent(t *testing.T) {
	eb := NewEventBroadcaster()

	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateRunning, NumEvals: 8})

	// A late subscriber immediately receives the last event.
	ch := eb.Subscribe("job-1")
	defer eb.Unsubscribe("job-1", ch)

	select {
	case got := <-ch:
		if got.NumEvals != 8 {
			t.Errorf("expected replayed event with 8 evals, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("last event not replayed to a new subscriber")
	}
}

func TestBroadcasterScopesByJob(t *testing.T) {
	eb := NewEventBroadcaster()

	other := eb.Subscribe("job-2")
	defer eb.Unsubscribe("job-2", other)

	eb.Broadcast(ProgressEvent{JobID: "job-1", State: StateRunning})

	select {
	case e := <-other:
		t.Errorf("subscriber received another job's event: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}
