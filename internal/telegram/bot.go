package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
}

func NewBot(token, webhookURL string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	logrus.Infof("telegram: webhook set to %s", webhookURL)

	return &Bot{api: api, h: NewHandlers(api, deps)}, nil
}

// WebhookHandler is registered at /telegram/webhook.
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "bad update", 400)
		return
	}
	if update.Message == nil {
		logrus.Debug("telegram: non-message update received")
		w.WriteHeader(http.StatusOK)
		return
	}
	logrus.Debugf("telegram: chat_id=%d text=%q", update.Message.Chat.ID, update.Message.Text)
	go b.h.HandleMessage(update.Message)
	w.WriteHeader(http.StatusOK)
}
