// Package bot — тонкий транспортный адаптер над Telegram Bot API:
// переводит апдейты в события диалога и реализует исходящий Renderer.
// Бизнес-логики здесь нет.
package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"promohub/internal/dialog"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, ev dialog.Event) error
}

type Adapter struct {
	api   *tgbotapi.BotAPI
	token string
}

func New(token string) (*Adapter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Adapter{api: api, token: token}, nil
}

// Run reads updates until the context is cancelled.
func (a *Adapter) Run(ctx context.Context, d Dispatcher) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := a.api.GetUpdatesChan(u)

	log.Printf("Bot @%s is ready for admin commands", a.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			ev, ack, valid := translate(update)
			if !valid {
				continue
			}
			if err := d.Dispatch(ctx, ev); err != nil {
				log.Printf("dispatch event from %d: %v", ev.ActorID, err)
			}
			if ack != "" {
				// callback-кнопка должна перестать "крутиться"
				if _, err := a.api.Request(tgbotapi.NewCallback(ack, "")); err != nil {
					log.Printf("ack callback: %v", err)
				}
			}
		}
	}
}

// translate maps one Telegram update to a dialog event. The second value
// is the callback query id to acknowledge, when any.
func translate(update tgbotapi.Update) (dialog.Event, string, bool) {
	if cb := update.CallbackQuery; cb != nil {
		return dialog.Event{
			ActorID: cb.From.ID,
			Kind:    dialog.KindCallback,
			Data:    cb.Data,
		}, cb.ID, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return dialog.Event{}, "", false
	}

	if len(msg.Photo) > 0 {
		// самый крупный размер приходит последним в списке
		return dialog.Event{
			ActorID:  msg.From.ID,
			Kind:     dialog.KindPhoto,
			PhotoRef: msg.Photo[len(msg.Photo)-1].FileID,
		}, "", true
	}

	if msg.Text != "" {
		return dialog.Event{
			ActorID: msg.From.ID,
			Kind:    dialog.KindText,
			Text:    msg.Text,
		}, "", true
	}

	return dialog.Event{}, "", false
}

// ===== dialog.Renderer =====

func (a *Adapter) Send(ctx context.Context, actorID int64, text string, buttons [][]dialog.Button) error {
	msg := tgbotapi.NewMessage(actorID, text)
	if len(buttons) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, row := range buttons {
			btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				if b.URL != "" {
					btns = append(btns, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				} else {
					btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
				}
			}
			rows = append(rows, btns)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}

	_, err := a.api.Send(msg)
	return err
}

func (a *Adapter) SendMenu(ctx context.Context, actorID int64, text string, rows [][]string) error {
	msg := tgbotapi.NewMessage(actorID, text)

	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true
	msg.ReplyMarkup = kb

	_, err := a.api.Send(msg)
	return err
}

// ===== media.FileResolver =====

func (a *Adapter) FileURL(ctx context.Context, fileID string) (string, error) {
	file, err := a.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", err
	}
	return file.Link(a.token), nil
}
