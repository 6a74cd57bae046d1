package core

import (
	"sync/atomic"

	errorsmod "cosmossdk.io/errors"
)

// Cursor is the last source chain height fully processed for a channel.
// It is owned by a single ChainPoller; reads from other goroutines are safe.
type Cursor struct {
	channelID  string
	lastHeight atomic.Uint64
}

func NewCursor(channelID string, height uint64) *Cursor {
	c := &Cursor{channelID: channelID}
	c.lastHeight.Store(height)
	return c
}

func (c *Cursor) ChannelID() string {
	return c.channelID
}

func (c *Cursor) LastHeight() uint64 {
	return c.lastHeight.Load()
}

// Next returns the height to be processed after the current one.
func (c *Cursor) Next() uint64 {
	return c.lastHeight.Load() + 1
}

// Advance moves the cursor to height. Moving backwards is an error and leaves the cursor untouched.
func (c *Cursor) Advance(height uint64) error {
	last := c.lastHeight.Load()
	if height < last {
		return errorsmod.Wrapf(ErrCursor, "channel %s: cannot move cursor from %d back to %d", c.channelID, last, height)
	}
	c.lastHeight.Store(height)
	return nil
}
