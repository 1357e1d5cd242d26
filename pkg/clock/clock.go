package clock

import (
	"sync"
	"time"
)

// Clock 所有与时间相关的业务规则的时间来源
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System 返回系统时钟
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// Fixed 可设置的时钟，用于测试
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed 返回固定在 t 的时钟
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set 将时钟设为 t
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance 将时钟前移 d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
