package attempts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_PutDetachesPrevious(t *testing.T) {
	registry := NewRegistry()
	first := newTestAttempt(t, 10, &fakeSubmitter{}, nil, &navigations{}, nil)
	second := newTestAttempt(t, 10, &fakeSubmitter{}, nil, &navigations{}, nil)

	registry.Put(1, first)
	registry.Put(1, second)

	assert.True(t, first.Detached(), "старая попытка отключается")
	assert.False(t, second.Detached())

	got, ok := registry.Get(1)
	assert.True(t, ok)
	assert.Same(t, second, got)

	registry.RemoveIf(1, first)
	_, ok = registry.Get(1)
	assert.True(t, ok, "чужая попытка не удаляет текущую")

	registry.PutReview(1, NewReviewFlow(7, twoMarked(), &fakeSaver{}, nil))
	assert.Len(t, registry.Active(), 1)

	registry.Reset(1)
	_, ok = registry.Get(1)
	assert.False(t, ok)
	_, ok = registry.Review(1)
	assert.False(t, ok)
	assert.True(t, second.Detached())
}

func TestRegistry_LaunchGuard(t *testing.T) {
	registry := NewRegistry()

	assert.True(t, registry.BeginLaunch(1))
	assert.False(t, registry.BeginLaunch(1), "второй запуск в том же чате ждет первого")
	assert.True(t, registry.BeginLaunch(2), "другие чаты не блокируются")

	registry.EndLaunch(1)
	assert.True(t, registry.BeginLaunch(1), "после завершения запуск снова доступен")
}
