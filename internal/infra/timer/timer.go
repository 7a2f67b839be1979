package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/telebot.v4"
)

// Editor - часть telebot.Bot, нужная для обновления сообщения
type Editor interface {
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// FormatClock форматирует секунды как ЧЧ:ММ:СС
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

type tracked struct {
	messageID int
	lastEdit  time.Time
	inFlight  bool

	// finalPending - ноль пришел во время другого редактирования и будет показан после него
	finalPending bool
}

// Updater обновляет сообщение с таймером попытки не чаще refreshInterval.
// Редактирование идет в отдельной горутине и не задерживает тики.
type Updater struct {
	bot      Editor
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	chats map[int64]*tracked
	wg    sync.WaitGroup
}

// NewTimerUpdater создает новый экземпляр Updater
func NewTimerUpdater(bot Editor, refreshInterval time.Duration) *Updater {
	return &Updater{
		bot:      bot,
		interval: refreshInterval,
		now:      time.Now,
		chats:    make(map[int64]*tracked),
	}
}

// Track запоминает сообщение с таймером чата
func (tu *Updater) Track(chatID int64, messageID int) {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	tu.chats[chatID] = &tracked{messageID: messageID, lastEdit: tu.now()}
}

// Forget перестает обновлять таймер чата
func (tu *Updater) Forget(chatID int64) {
	tu.mu.Lock()
	defer tu.mu.Unlock()
	delete(tu.chats, chatID)
}

// OnTick возвращает обработчик тиков для попытки чата
func (tu *Updater) OnTick(chatID int64) func(remaining int) {
	return func(remaining int) {
		tu.UpdateTimer(chatID, remaining)
	}
}

// UpdateTimer обновляет сообщение, если прошло достаточно времени или время вышло
func (tu *Updater) UpdateTimer(chatID int64, remaining int) {
	tu.mu.Lock()
	t, ok := tu.chats[chatID]
	if !ok {
		tu.mu.Unlock()
		return
	}
	if t.inFlight {
		if remaining == 0 {
			t.finalPending = true
		}
		tu.mu.Unlock()
		return
	}
	now := tu.now()
	if remaining > 0 && now.Sub(t.lastEdit) < tu.interval {
		tu.mu.Unlock()
		return
	}
	t.inFlight = true
	t.lastEdit = now
	messageID := t.messageID
	tu.mu.Unlock()

	tu.wg.Add(1)
	go func() {
		defer tu.wg.Done()
		tu.edit(chatID, messageID, remaining)

		// Отложенный ноль показывается и после Forget: переход к результатам не отменяет его
		tu.mu.Lock()
		for t.finalPending {
			t.finalPending = false
			t.lastEdit = tu.now()
			tu.mu.Unlock()
			tu.edit(chatID, messageID, 0)
			tu.mu.Lock()
		}
		t.inFlight = false
		tu.mu.Unlock()
	}()
}

// Wait дожидается завершения начатых обновлений
func (tu *Updater) Wait() {
	tu.wg.Wait()
}

func (tu *Updater) edit(chatID int64, messageID int, remaining int) {
	text := fmt.Sprintf("⏰ Осталось: *%s*", FormatClock(remaining))
	if remaining == 0 {
		text = "⏰ Время вышло! Отправляем ответы..."
	}

	_, err := tu.bot.Edit(&telebot.Message{
		ID:   messageID,
		Chat: &telebot.Chat{ID: chatID},
	}, text, &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	})
	if err != nil && !errors.Is(err, telebot.ErrSameMessageContent) {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to update timer message")
	}
}
