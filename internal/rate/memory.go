package rate

import (
	"context"
	"sync"
	"time"
)

// counter es la tupla efímera (hits, windowStart) de una key.
// Vive solo en memoria del proceso; se pierde en un restart. Aceptable:
// solo frena abuso, nunca decide correctness durable.
type counter struct {
	hits        int
	windowStart time.Time
}

// MemoryLimiter es un limiter de ventana fija con reset: una vez
// gastados los points, la key queda bloqueada hasta que la ventana
// expira, momento en el que el contador vuelve a cero. No es un
// sliding log exacto; alcanza como guardia gruesa de abuso.
type MemoryLimiter struct {
	points int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*counter

	now func() time.Time // inyectable en tests
}

// NewMemory crea un limiter en memoria con presupuesto (points, window).
func NewMemory(points int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		points:  points,
		window:  window,
		entries: make(map[string]*counter),
		now:     time.Now,
	}
}

// current retorna el contador vigente de la key, reseteándolo si la
// ventana expiró. Caller debe tener el lock.
func (l *MemoryLimiter) current(key string, now time.Time) *counter {
	c, ok := l.entries[key]
	if !ok {
		c = &counter{windowStart: now}
		l.entries[key] = c
		return c
	}
	if now.Sub(c.windowStart) >= l.window {
		c.hits = 0
		c.windowStart = now
	}
	return c
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.current(key, l.now())
	return c.hits < l.points, nil
}

func (l *MemoryLimiter) Consume(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	c := l.current(key, now)

	if c.hits >= l.points {
		retry := l.window - now.Sub(c.windowStart)
		if retry < 0 {
			retry = 0
		}
		return Result{Allowed: false, RetryAfter: retry}, ErrRateExceeded
	}
	c.hits++
	return Result{Allowed: true, Remaining: l.points - c.hits}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

// sweep elimina contadores cuya ventana ya expiró para que el map no
// crezca sin límite. Corre bajo el lock y es O(n); con las cardinalidades
// de IPs/usuarios esperadas no pesa.
func (l *MemoryLimiter) sweep(now time.Time) {
	if len(l.entries) < 4096 {
		return
	}
	for k, c := range l.entries {
		if now.Sub(c.windowStart) >= l.window {
			delete(l.entries, k)
		}
	}
}
