package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	CommitID string

	// Commit is a single in-flight or finished field update.
	Commit struct {
		id        CommitID
		editID    EditID
		request   *UpdateRequest
		state     CommitState
		timeTaken time.Duration
		timestamp time.Time

		// any error that might occur during the update
		err  error
		done chan struct{}
		mu   sync.RWMutex
	}
)

// commitPersistent is used for marshaling the commit
type commitPersistent struct {
	ID        string   `json:"id"`
	EditID    string   `json:"edit_id"`
	RecordID  RecordID `json:"record_id"`
	FieldName string   `json:"field_name"`
	State     string   `json:"state"`
	TimeTaken int64    `json:"time_taken_us"`
	Timestamp int64    `json:"timestamp_us"`
	Error     string   `json:"error,omitempty"`
}

func (c *Commit) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	errMsg := ""
	if c.err != nil {
		errMsg = c.err.Error()
	}

	return json.Marshal(&commitPersistent{
		ID:        string(c.id),
		EditID:    string(c.editID),
		RecordID:  c.request.ID,
		FieldName: c.request.FieldName,
		State:     c.state.String(),
		TimeTaken: c.timeTaken.Microseconds(),
		Timestamp: c.timestamp.UnixMicro(),
		Error:     errMsg,
	})
}

func newCommit(editID EditID, req *UpdateRequest) *Commit {
	return &Commit{
		id:        CommitID(uuid.New().String()),
		editID:    editID,
		request:   req,
		state:     CommitStateUnknown,
		timestamp: time.Now(),

		done: make(chan struct{}),
	}
}

func (c *Commit) setState(state CommitState, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = state
	c.err = err
	if state.IsFinished() {
		c.timeTaken = time.Since(c.timestamp)
	}
}

// start sends the update in the background. onEvent is called for every
// state change, the final call happens before Done is closed.
func (c *Commit) start(ctx context.Context, endpoint Endpoint, onEvent func(CommitState, *Commit)) {
	trigger := func(state CommitState, err error) {
		c.setState(state, err)
		if onEvent != nil {
			onEvent(state, c)
		}
	}

	trigger(CommitStatePending, nil)

	go func() {
		defer close(c.done)

		err := endpoint.Update(ctx, c.request)
		if err != nil {
			trigger(CommitStateFailed, fmt.Errorf("endpoint.Update: %w", err))
			return
		}

		trigger(CommitStateCommitted, nil)
	}()
}

func (c *Commit) GetID() CommitID {
	return c.id
}

func (c *Commit) GetEditID() EditID {
	return c.editID
}

func (c *Commit) GetRecordID() RecordID {
	return c.request.ID
}

func (c *Commit) GetFieldName() string {
	return c.request.FieldName
}

func (c *Commit) GetValue() any {
	return c.request.FieldData
}

func (c *Commit) GetState() CommitState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Commit) GetTimeTaken() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeTaken
}

func (c *Commit) GetTimestamp() time.Time {
	return c.timestamp
}

func (c *Commit) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Done returns a non-buffered channel that is closed when
// the commit finishes.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the commit finishes or ctx is done.
func (c *Commit) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
