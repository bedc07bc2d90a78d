package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/memoryline/yearbook/internal/domain/enums"
	"github.com/memoryline/yearbook/internal/infra/telegram"
	"github.com/memoryline/yearbook/internal/modclient"
)

const callbackPrefixModeration = "mod"

const (
	callbackActionApprove = "approve"
	callbackActionReject  = "reject"
)

// maxQueueCards caps how many cards one queue view sends into the chat.
const maxQueueCards = 5

func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		a.routeMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		a.handleCallback(ctx, update.CallbackQuery)
	}
}

func (a *App) routeMessage(ctx context.Context, message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			a.handleStart(message.Chat.ID)
		case "cancel":
			a.handleCancel(message.Chat.ID, message.From.ID)
		default:
			a.sendText(message.Chat.ID, "Unknown command. Use /start")
		}
		return
	}

	if a.handleRejectReasonIfNeeded(ctx, message) {
		return
	}

	if kind, ok := kindByMenuLabel(strings.TrimSpace(message.Text)); ok {
		a.showQueue(ctx, message.Chat.ID, kind)
		return
	}

	a.sendText(message.Chat.ID, "Pick a queue from the menu or use /start")
}

func (a *App) handleStart(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Moderation console. Pick a queue to review.")
	msg.ReplyMarkup = telegram.BuildReplyKeyboard(menuRows())
	if err := a.tg.Send(msg); err != nil {
		a.logger.Error("send start menu", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (a *App) handleCancel(chatID, actorID int64) {
	a.rejectMu.Lock()
	state, ok := a.rejectByChat[chatID]
	if ok && state.ActorID == actorID {
		delete(a.rejectByChat, chatID)
	}
	a.rejectMu.Unlock()

	if ok {
		a.sendText(chatID, "Reject cancelled. The item stays in the queue.")
		return
	}
	a.sendText(chatID, "Nothing to cancel.")
}

func (a *App) showQueue(ctx context.Context, chatID int64, kind enums.EntityKind) {
	items, err := a.api.ListPending(ctx, kind)
	if err != nil {
		a.sendText(chatID, listErrorText(err))
		return
	}

	if len(items) == 0 {
		a.sendText(chatID, fmt.Sprintf("No pending %s. Queue is clear.", kind.Plural()))
		return
	}

	a.sendText(chatID, fmt.Sprintf("Pending %s: %d", kind.Plural(), items[0].QueueSize))

	shown := items
	if len(shown) > maxQueueCards {
		shown = shown[:maxQueueCards]
	}
	for _, item := range shown {
		a.sendQueueCard(chatID, kind, item)
	}
}

func (a *App) sendQueueCard(chatID int64, kind enums.EntityKind, item modclient.QueueItem) {
	msg := tgbotapi.NewMessage(chatID, formatQueueItem(item))
	msg.ReplyMarkup = telegram.BuildInlineKeyboard([][]telegram.InlineButton{{
		{Text: "Approve", Data: decisionCallback(callbackActionApprove, kind, item.EntityID)},
		{Text: "Reject", Data: decisionCallback(callbackActionReject, kind, item.EntityID)},
	}})
	msg.DisableWebPagePreview = false
	if err := a.tg.Send(msg); err != nil {
		a.logger.Error("send queue card", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (a *App) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query == nil || query.From == nil || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	ackText := ""
	ackAlert := false
	defer func() {
		a.answerCallback(query.ID, ackText, ackAlert)
	}()

	action, kind, entityID, ok := parseDecisionCallback(query.Data)
	if !ok {
		return
	}

	if !a.tryAcquire(kind, entityID) {
		ackText = "Already being processed"
		return
	}

	switch action {
	case callbackActionApprove:
		defer a.release(kind, entityID)
		ackText, ackAlert = a.doApprove(ctx, chatID, query.Message.MessageID, kind, entityID)
	case callbackActionReject:
		// No network call yet. The per-chat reject state takes over as the
		// guard until the reason arrives.
		a.release(kind, entityID)
		a.promptRejectReason(chatID, query.From.ID, query.Message.MessageID, kind, entityID)
	default:
		a.release(kind, entityID)
	}
}

func (a *App) doApprove(ctx context.Context, chatID int64, messageID int, kind enums.EntityKind, entityID int64) (string, bool) {
	_, err := a.api.Approve(ctx, kind, entityID)
	if err != nil {
		return a.handleDecisionError(ctx, chatID, kind, err)
	}

	if a.dropRejectStateFor(chatID, kind, entityID) {
		a.sendText(chatID, "Reject cancelled, the item was approved instead.")
	}
	a.replaceCard(chatID, messageID, fmt.Sprintf("Approved %s #%d", kind, entityID))
	return "Approved", false
}

// dropRejectStateFor clears a pending reject prompt when the same item was
// decided another way, so a late reason message cannot fire a second decision.
func (a *App) dropRejectStateFor(chatID int64, kind enums.EntityKind, entityID int64) bool {
	a.rejectMu.Lock()
	defer a.rejectMu.Unlock()

	state, ok := a.rejectByChat[chatID]
	if !ok || state.Kind != kind || state.EntityID != entityID {
		return false
	}
	delete(a.rejectByChat, chatID)
	return true
}

func (a *App) promptRejectReason(chatID, actorID int64, messageID int, kind enums.EntityKind, entityID int64) {
	a.rejectMu.Lock()
	a.rejectByChat[chatID] = rejectState{
		ActorID:   actorID,
		Kind:      kind,
		EntityID:  entityID,
		MessageID: messageID,
	}
	a.rejectMu.Unlock()

	a.sendText(chatID, fmt.Sprintf("Rejecting %s #%d. Reply with the reason, or /cancel.", kind, entityID))
}

func (a *App) handleRejectReasonIfNeeded(ctx context.Context, message *tgbotapi.Message) bool {
	a.rejectMu.Lock()
	state, ok := a.rejectByChat[message.Chat.ID]
	a.rejectMu.Unlock()
	if !ok || state.ActorID != message.From.ID {
		return false
	}

	reason := strings.TrimSpace(message.Text)
	if reason == "" {
		a.sendText(message.Chat.ID, "The reason cannot be empty. Reply with a reason, or /cancel.")
		return true
	}

	_, err := a.api.Reject(ctx, state.Kind, state.EntityID, reason)
	if err != nil {
		if modclient.IsRetryable(err) {
			// Keep the state so the moderator can resend the reason.
			a.sendText(message.Chat.ID, "Network error, the item is still pending. Send the reason again, or /cancel.")
			return true
		}

		a.clearRejectState(message.Chat.ID)
		text, _ := a.handleDecisionError(ctx, message.Chat.ID, state.Kind, err)
		a.sendText(message.Chat.ID, text)
		return true
	}

	a.clearRejectState(message.Chat.ID)
	a.replaceCard(message.Chat.ID, state.MessageID, fmt.Sprintf("Rejected %s #%d: %s", state.Kind, state.EntityID, reason))
	a.sendText(message.Chat.ID, "Rejected.")
	return true
}

func (a *App) clearRejectState(chatID int64) {
	a.rejectMu.Lock()
	delete(a.rejectByChat, chatID)
	a.rejectMu.Unlock()
}

// handleDecisionError maps an API failure onto moderator-facing feedback. A
// conflict refreshes the queue: the local snapshot is stale, the item was
// decided elsewhere.
func (a *App) handleDecisionError(ctx context.Context, chatID int64, kind enums.EntityKind, err error) (string, bool) {
	switch {
	case errors.Is(err, modclient.ErrConflict):
		a.showQueue(ctx, chatID, kind)
		return "Already decided by another moderator", true
	case errors.Is(err, modclient.ErrNotFound):
		a.showQueue(ctx, chatID, kind)
		return "Item is no longer in the queue", true
	case errors.Is(err, modclient.ErrForbidden), errors.Is(err, modclient.ErrUnauthorized):
		return "Admin access denied, check the bot's API token", true
	default:
		a.logger.Warn("moderation decision failed", zap.String("kind", string(kind)), zap.Error(err))
		return "Request failed, try again", true
	}
}

// replaceCard rewrites a decided item's card in place, which removes its
// buttons along with the old text.
func (a *App) replaceCard(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if err := a.tg.Send(edit); err != nil {
		a.logger.Warn("edit queue card", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (a *App) answerCallback(callbackID, text string, alert bool) {
	cfg := tgbotapi.NewCallback(callbackID, text)
	cfg.ShowAlert = alert
	if err := a.tg.Send(cfg); err != nil {
		a.logger.Warn("answer callback", zap.Error(err))
	}
}

func (a *App) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if err := a.tg.Send(msg); err != nil {
		a.logger.Error("send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func listErrorText(err error) string {
	switch {
	case errors.Is(err, modclient.ErrForbidden), errors.Is(err, modclient.ErrUnauthorized):
		return "Admin access denied, check the bot's API token"
	case modclient.IsRetryable(err):
		return "The API is temporarily unavailable, try again"
	default:
		return "Failed to load the queue"
	}
}

func decisionCallback(action string, kind enums.EntityKind, entityID int64) string {
	return strings.Join([]string{
		callbackPrefixModeration,
		action,
		string(kind),
		strconv.FormatInt(entityID, 10),
	}, ":")
}

func parseDecisionCallback(data string) (string, enums.EntityKind, int64, bool) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != callbackPrefixModeration {
		return "", "", 0, false
	}

	kind, ok := enums.ParseEntityKind(parts[2])
	if !ok {
		return "", "", 0, false
	}

	entityID, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || entityID <= 0 {
		return "", "", 0, false
	}

	return parts[1], kind, entityID, true
}
