package service

import (
	"sync"

	"futures_bot/internal/models"
)

// Cloner: запись реестра умеет отдавать глубокую копию.
type Cloner[T any] interface {
	Clone() T
}

// Registry хранит стратегии одного координатора по id.
// Наружу отдаются только копии; менять запись может лишь владелец Handle.
type Registry[T Cloner[T]] struct {
	mu    sync.RWMutex
	items map[string]*T
	order []string
}

func NewRegistry[T Cloner[T]]() *Registry[T] {
	return &Registry[T]{items: make(map[string]*T)}
}

// Insert кладёт запись и возвращает единственный способ её менять.
func (r *Registry[T]) Insert(id string, v T) *Handle[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		r.order = append(r.order, id)
	}
	r.items[id] = &v
	return &Handle[T]{reg: r, id: id}
}

func (r *Registry[T]) Get(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[id]
	if !ok {
		var zero T
		return zero, models.ErrNotFound
	}
	return (*v).Clone(), nil
}

// All: снимки в порядке создания.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, (*r.items[id]).Clone())
	}
	return out
}

// AllByID: снимки, ключ id.
func (r *Registry[T]) AllByID() map[string]T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]T, len(r.items))
	for id, v := range r.items {
		out[id] = (*v).Clone()
	}
	return out
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Handle: узкий доступ на запись к одной записи реестра.
// fn вызывается под локом: никаких сетевых вызовов внутри.
type Handle[T Cloner[T]] struct {
	reg *Registry[T]
	id  string
}

func (h *Handle[T]) ID() string { return h.id }

// Update меняет запись под локом.
func (h *Handle[T]) Update(fn func(v *T)) {
	h.reg.mu.Lock()
	defer h.reg.mu.Unlock()
	fn(h.reg.items[h.id])
}

// Snapshot: копия текущего состояния.
func (h *Handle[T]) Snapshot() T {
	h.reg.mu.RLock()
	defer h.reg.mu.RUnlock()
	return (*h.reg.items[h.id]).Clone()
}

// Handle для уже зарегистрированной записи; нужен внешним командам (cancel, stop),
// которые тоже меняют статус, но только через тот же лок.
func (r *Registry[T]) handle(id string) (*Handle[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.items[id]; !ok {
		return nil, false
	}
	return &Handle[T]{reg: r, id: id}, true
}

// remove: откат Insert, когда запись так и не начала жить.
func (r *Registry[T]) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
