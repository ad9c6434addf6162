package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestEmitSwallowsErrors(t *testing.T) {
	pub := &failingPublisher{}
	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, New(JobCreated, map[string]int{"job_id": 1}))
	})
	assert.Equal(t, 1, pub.calls)

	assert.NotPanics(t, func() { Emit(context.Background(), nil, New(JobCreated, nil)) })
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder()
	Emit(context.Background(), rec, New(InterviewUpdated, nil))
	Emit(context.Background(), rec, New(JobFinished, nil))

	assert.Equal(t, []string{InterviewUpdated, JobFinished}, rec.Types())
	assert.Len(t, rec.Events(), 2)
	assert.False(t, rec.Events()[0].OccurredAt.IsZero())
}
