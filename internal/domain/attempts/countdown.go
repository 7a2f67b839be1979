package attempts

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CountdownState - состояние таймера попытки
type CountdownState int

const (
	CountdownIdle CountdownState = iota
	CountdownRunning
	CountdownStopped
	CountdownExpired
)

func (s CountdownState) String() string {
	switch s {
	case CountdownIdle:
		return "idle"
	case CountdownRunning:
		return "running"
	case CountdownStopped:
		return "stopped"
	case CountdownExpired:
		return "expired"
	default:
		return "unknown"
	}
}

var (
	ErrCountdownArmed  = errors.New("countdown already armed")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Countdown - таймер попытки: Idle → Running → {Stopped, Expired}.
// Каждый Tick уменьшает остаток на секунду, на нуле onExpire вызывается ровно один раз.
type Countdown struct {
	mu        sync.Mutex
	state     CountdownState
	remaining int

	onTick   func(remaining int)
	onExpire func()
}

// NewCountdown создает таймер в состоянии Idle
func NewCountdown(onTick func(remaining int), onExpire func()) *Countdown {
	return &Countdown{
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Arm переводит таймер в Running с заданным остатком
func (c *Countdown) Arm(seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownIdle {
		return ErrCountdownArmed
	}
	if seconds <= 0 {
		return ErrInvalidDuration
	}

	c.state = CountdownRunning
	c.remaining = seconds
	return nil
}

// Start взводит таймер и запускает тики с заданным интервалом
func (c *Countdown) Start(ctx context.Context, seconds int, interval time.Duration) error {
	if err := c.Arm(seconds); err != nil {
		return err
	}
	go c.Run(ctx, interval)
	return nil
}

// Run вызывает Tick по тикеру, пока не отменен контекст или таймер не истек
func (c *Countdown) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
			if c.State() == CountdownExpired {
				return
			}
		}
	}
}

// Tick уменьшает остаток на одну секунду. Вне Running ничего не делает.
func (c *Countdown) Tick() {
	c.mu.Lock()
	if c.state != CountdownRunning {
		c.mu.Unlock()
		return
	}

	c.remaining--
	expired := c.remaining <= 0
	if expired {
		c.remaining = 0
		c.state = CountdownExpired
	}
	remaining := c.remaining
	c.mu.Unlock()

	// Колбэки вызываются без блокировки: onExpire сам останавливает таймер через Stop
	if c.onTick != nil {
		c.onTick(remaining)
	}
	if expired && c.onExpire != nil {
		c.onExpire()
	}
}

// Stop останавливает тики перед отправкой. Возвращает false, если таймер не шел.
func (c *Countdown) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownRunning {
		return false
	}
	c.state = CountdownStopped
	return true
}

// Resume возобновляет таймер после неудачной ручной отправки.
// spent - секунды, прошедшие с Stop: они списываются с остатка.
// Если время вышло, таймер переходит в Expired без автоотправки и Resume возвращает false.
func (c *Countdown) Resume(spent int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != CountdownStopped {
		return false
	}
	if spent > 0 {
		c.remaining -= spent
	}
	if c.remaining <= 0 {
		c.remaining = 0
		c.state = CountdownExpired
		return false
	}
	c.state = CountdownRunning
	return true
}

// Remaining возвращает остаток в секундах
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// State возвращает текущее состояние таймера
func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
