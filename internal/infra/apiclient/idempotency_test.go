package apiclient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLedger(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger := NewKeyLedger(10 * time.Minute)
	ledger.now = func() time.Time { return now }

	first := ledger.Key("1:unlock:card-7")
	assert.NotEmpty(t, first)

	// Сетевая ошибка - ключ остается для повтора
	ledger.Settle("1:unlock:card-7", &NetworkError{Op: "POST", Err: errors.New("timeout")})
	assert.Equal(t, first, ledger.Key("1:unlock:card-7"))

	// Непонятный ответ - тоже повтор с тем же ключом
	ledger.Settle("1:unlock:card-7", &UnexpectedResponseError{Status: 502})
	assert.Equal(t, first, ledger.Key("1:unlock:card-7"))

	// Другое намерение получает свой ключ
	assert.NotEqual(t, first, ledger.Key("1:order:plan-2"))

	// Успех освобождает ключ
	ledger.Settle("1:unlock:card-7", nil)
	second := ledger.Key("1:unlock:card-7")
	assert.NotEqual(t, first, second)

	// Доменная ошибка тоже окончательна
	ledger.Settle("1:unlock:card-7", &DomainError{Status: 400, Message: "Not enough points"})
	assert.NotEqual(t, second, ledger.Key("1:unlock:card-7"))

	// Просроченный ключ заменяется
	third := ledger.Key("1:unlock:card-7")
	now = now.Add(11 * time.Minute)
	assert.NotEqual(t, third, ledger.Key("1:unlock:card-7"))
}
