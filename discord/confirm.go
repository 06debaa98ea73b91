package discord

import (
	"sync"
	"time"
)

type confirmation struct {
	boardID string
	timer   *time.Timer
}

// confirmations tracks open undo prompts by token. A prompt nobody answers
// expires and runs its expire func once.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]*confirmation
}

func newConfirmations() *confirmations {
	return &confirmations{pending: map[string]*confirmation{}}
}

func (c *confirmations) add(token, boardID string, d time.Duration, expire func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.pending[token]; ok {
		old.timer.Stop()
	}
	conf := &confirmation{boardID: boardID}
	conf.timer = time.AfterFunc(d, func() {
		c.mu.Lock()
		cur, ok := c.pending[token]
		if ok && cur == conf {
			delete(c.pending, token)
		}
		c.mu.Unlock()
		if ok && cur == conf && expire != nil {
			expire()
		}
	})
	c.pending[token] = conf
}

// take closes a prompt and returns the board it was opened from. ok is false
// once the prompt expired or was answered.
func (c *confirmations) take(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conf, ok := c.pending[token]
	if !ok {
		return "", false
	}
	conf.timer.Stop()
	delete(c.pending, token)
	return conf.boardID, true
}

func (c *confirmations) stopAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token, conf := range c.pending {
		conf.timer.Stop()
		delete(c.pending, token)
	}
}

func (c *confirmations) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
