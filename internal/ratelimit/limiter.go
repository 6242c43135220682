// Package ratelimit реализует ограничение частоты запросов по ключу клиента
// методом фиксированного окна: на каждый ключ хранится счетчик и время
// начала окна, по истечении окна счетчик сбрасывается.
//
// На границе окон допустим всплеск до 2x max запросов подряд — это
// документированная неточность фиксированного окна, а не ошибка.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter описывает интерфейс допуска запроса по ключу клиента.
// Реализации: FixedWindow (локальные счетчики) и RedisLimiter (внешние).
type Limiter interface {
	// Allow возвращает true, если запрос от клиента key допущен в текущем окне.
	Allow(ctx context.Context, key string) (bool, error)
}

type entry struct {
	count       int
	windowStart time.Time
}

// FixedWindow считает запросы по ключу в пределах фиксированного окна.
// Счетчики защищены мьютексом: инкремент и сравнение выполняются атомарно
// относительно конкурентных запросов одного клиента.
type FixedWindow struct {
	mu      sync.Mutex
	entries map[string]*entry

	maxRequests int
	window      time.Duration
	now         func() time.Time
}

// NewFixedWindow создает ограничитель на maxRequests запросов за window.
func NewFixedWindow(maxRequests int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		entries:     make(map[string]*entry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Allow допускает запрос, если счетчик клиента в текущем окне не превысил
// максимум. Первый запрос клиента или запрос после истечения окна
// открывает новое окно со счетчиком 1.
func (l *FixedWindow) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &entry{count: 1, windowStart: now}
		return true, nil
	}

	e.count++
	return e.count <= l.maxRequests, nil
}

// Run периодически удаляет записи с истекшим окном, чтобы карта
// не росла бесконечно на уникальных клиентах. Блокируется до отмены ctx.
func (l *FixedWindow) Run(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

func (l *FixedWindow) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}
