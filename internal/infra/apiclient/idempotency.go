package apiclient

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// KeyLedger выдает ключи идемпотентности для разблокировок и покупок.
// Один намерение (чат + ресурс) получает один ключ до ответа сервера по существу.
type KeyLedger struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]ledgerEntry
}

type ledgerEntry struct {
	key     string
	expires time.Time
}

// NewKeyLedger создает новый экземпляр KeyLedger
func NewKeyLedger(ttl time.Duration) *KeyLedger {
	return &KeyLedger{
		ttl:  ttl,
		now:  time.Now,
		keys: make(map[string]ledgerEntry),
	}
}

// Key возвращает ключ для намерения, создавая новый при необходимости
func (l *KeyLedger) Key(intent string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if entry, ok := l.keys[intent]; ok && now.Before(entry.expires) {
		return entry.key
	}

	entry := ledgerEntry{key: uuid.NewString(), expires: now.Add(l.ttl)}
	l.keys[intent] = entry
	return entry.key
}

// Settle освобождает ключ, если сервер ответил окончательно (успех или доменная ошибка).
// После сетевой ошибки или непонятного ответа ключ остается для повтора.
func (l *KeyLedger) Settle(intent string, err error) {
	switch Classify(err) {
	case KindOK, KindDomain, KindAuth:
	default:
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.keys, intent)
}
