package attempts

import (
	"sort"
	"sync"
)

// Registry хранит активную попытку и сбор причин для каждого чата
type Registry struct {
	mu       sync.RWMutex
	attempts  map[int64]*Attempt
	reviews   map[int64]*ReviewFlow
	launching map[int64]struct{}
}

// NewRegistry создает новый экземпляр Registry
func NewRegistry() *Registry {
	return &Registry{
		attempts:  make(map[int64]*Attempt),
		reviews:   make(map[int64]*ReviewFlow),
		launching: make(map[int64]struct{}),
	}
}

// BeginLaunch отмечает, что в чате запускается попытка.
// Возвращает false, если запуск уже идет: второй start_test не отправляется.
func (r *Registry) BeginLaunch(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.launching[chatID]; ok {
		return false
	}
	r.launching[chatID] = struct{}{}
	return true
}

// EndLaunch снимает отметку BeginLaunch
func (r *Registry) EndLaunch(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.launching, chatID)
}

// Put делает попытку активной в чате. Предыдущая попытка отключается.
func (r *Registry) Put(chatID int64, attempt *Attempt) {
	r.mu.Lock()
	previous := r.attempts[chatID]
	r.attempts[chatID] = attempt
	r.mu.Unlock()

	if previous != nil && previous != attempt {
		previous.Detach()
	}
}

// Get возвращает активную попытку чата
func (r *Registry) Get(chatID int64) (*Attempt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempt, ok := r.attempts[chatID]
	return attempt, ok
}

// Remove отключает и убирает попытку чата
func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	attempt := r.attempts[chatID]
	delete(r.attempts, chatID)
	r.mu.Unlock()

	if attempt != nil {
		attempt.Detach()
	}
}

// RemoveIf убирает попытку, только если она все еще активна в чате
func (r *Registry) RemoveIf(chatID int64, attempt *Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempts[chatID] == attempt {
		delete(r.attempts, chatID)
	}
}

// PutReview сохраняет сбор причин чата
func (r *Registry) PutReview(chatID int64, flow *ReviewFlow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews[chatID] = flow
}

// Review возвращает сбор причин чата
func (r *Registry) Review(chatID int64) (*ReviewFlow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	flow, ok := r.reviews[chatID]
	return flow, ok
}

// RemoveReview убирает сбор причин чата
func (r *Registry) RemoveReview(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, chatID)
}

// Reset убирает все состояние чата (выход из аккаунта)
func (r *Registry) Reset(chatID int64) {
	r.Remove(chatID)
	r.RemoveReview(chatID)
}

// Active возвращает активные попытки, упорядоченные по чату
func (r *Registry) Active() []*Attempt {
	r.mu.RLock()
	list := make([]*Attempt, 0, len(r.attempts))
	for _, attempt := range r.attempts {
		list = append(list, attempt)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ChatID() < list[j].ChatID() })
	return list
}
