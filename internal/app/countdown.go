package app

import (
	"math"
	"time"
)

// Countdown ticks once per second from its duration down to zero and then
// expires. It is not safe for concurrent use: the Engine owns it and wraps
// every scheduled step with its guard.
type Countdown struct {
	sched     Scheduler
	guard     func(func()) func()
	onTick    func(secondsLeft int)
	onExpire  func()
	remaining int
	task      Task
	stopped   bool
}

// newCountdown rounds d up to whole seconds. A non-positive d expires on Start.
func newCountdown(sched Scheduler, d time.Duration, guard func(func()) func(), onTick func(int), onExpire func()) *Countdown {
	remaining := int(math.Ceil(d.Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	return &Countdown{
		sched:     sched,
		guard:     guard,
		onTick:    onTick,
		onExpire:  onExpire,
		remaining: remaining,
	}
}

// Start shows the full duration and schedules the first tick.
func (c *Countdown) Start() {
	c.onTick(c.remaining)
	if c.remaining <= 0 {
		c.expire()
		return
	}
	c.schedule()
}

// Stop cancels the countdown; expiry will not fire afterwards.
func (c *Countdown) Stop() {
	c.stopped = true
	if c.task != nil {
		c.task.Stop()
		c.task = nil
	}
}

// Running reports whether the countdown is still ticking.
func (c *Countdown) Running() bool {
	return !c.stopped
}

// Remaining returns the seconds left on the readout.
func (c *Countdown) Remaining() int {
	return c.remaining
}

func (c *Countdown) schedule() {
	c.task = c.sched.AfterFunc(time.Second, c.guard(c.step))
}

func (c *Countdown) step() {
	if c.stopped {
		return
	}
	c.remaining--
	c.onTick(c.remaining)
	if c.remaining <= 0 {
		c.expire()
		return
	}
	c.schedule()
}

func (c *Countdown) expire() {
	c.stopped = true
	c.task = nil
	c.onExpire()
}
