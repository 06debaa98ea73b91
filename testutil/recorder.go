package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/onnwee/sokuji-bot/render"
)

// Posted is a message the recorder accepted.
type Posted struct {
	ID      string
	Message render.Message
}

// Edited is an edit the recorder accepted.
type Edited struct {
	ChannelID string
	MessageID string
	Message   render.Message
}

// Recorder captures replies, edits and deletes. It serves as both the
// messenger and the per-request replier of the bot in tests.
type Recorder struct {
	mu      sync.Mutex
	next    int
	replies []Posted
	edits   []Edited
	deletes []string
}

// Reply records msg and returns a fresh message id ("m1", "m2", ...).
func (r *Recorder) Reply(_ context.Context, msg render.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := fmt.Sprintf("m%d", r.next)
	r.replies = append(r.replies, Posted{ID: id, Message: msg})
	return id, nil
}

func (r *Recorder) Edit(_ context.Context, channelID, messageID string, msg render.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edits = append(r.edits, Edited{ChannelID: channelID, MessageID: messageID, Message: msg})
	return nil
}

func (r *Recorder) Delete(_ context.Context, _ string, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes = append(r.deletes, messageID)
	return nil
}

// Replies returns the replies in order.
func (r *Recorder) Replies() []Posted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Posted(nil), r.replies...)
}

// LastReply returns the most recent reply.
func (r *Recorder) LastReply() Posted {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return Posted{}
	}
	return r.replies[len(r.replies)-1]
}

// Edits returns the edits in order.
func (r *Recorder) Edits() []Edited {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Edited(nil), r.edits...)
}

// Deleted returns the deleted message ids. Deletes may run concurrently, so
// their order is not meaningful.
func (r *Recorder) Deleted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deletes...)
}

// Reset forgets everything recorded so far. Ids keep counting.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies, r.edits, r.deletes = nil, nil, nil
}
