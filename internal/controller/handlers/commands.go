package handlers

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/service"
)

const helpText = "📚 Commands:\n\n" +
	"/conflicts - Count teacher, room and section conflicts\n" +
	"/schedule <section id> - Weekly timetable of a section\n" +
	"/times <section id> - Time columns of a section\n" +
	"/help - Show this message"

// HandleStart handles /start.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := "there"
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, fmt.Sprintf("👋 Hi, %s!\n\n%s", name, helpText))
}

// HandleHelp handles /help.
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleConflicts handles /conflicts.
func (h *Handlers) HandleConflicts(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	report, err := h.conflicts.CountConflicts(ctx)
	if err != nil {
		h.logger.Error("Failed to count conflicts", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Could not count conflicts. Try again later.")
		return
	}

	h.sendMessage(ctx, b, chatID, FormatConflictReport(report))
}

// HandleSchedule handles /schedule <id>: a rendered grid with a text caption.
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sectionID, err := parseSectionArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Usage: /schedule <section id>")
		return
	}

	schedule, err := h.schedules.GetSectionSchedule(ctx, sectionID)
	if err != nil {
		h.logger.Error("Failed to get section schedule",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Could not load the schedule. Try again later.")
		return
	}

	text := FormatSchedule(sectionID, schedule)
	if schedule.Sessions() == 0 {
		h.sendMessage(ctx, b, chatID, text)
		return
	}

	image, err := h.renderer.SectionSchedulePNG(ctx, sectionID)
	if err != nil {
		// The text version is still useful without the picture.
		h.logger.Warn("Failed to render schedule image",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		h.sendMessage(ctx, b, chatID, text)
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: fmt.Sprintf("section-%d.png", sectionID), Data: bytes.NewReader(image)},
		Caption: truncateCaption(text),
	})
	if err != nil {
		h.logger.Error("Failed to send schedule image",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// HandleTimes handles /times <id>.
func (h *Handlers) HandleTimes(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sectionID, err := parseSectionArg(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Usage: /times <section id>")
		return
	}

	columns, err := h.columns.GetSectionTimeColumns(ctx, sectionID)
	if err != nil {
		if service.IsValidation(err) {
			h.sendError(ctx, b, chatID, "❌ "+err.Error())
			return
		}
		h.logger.Error("Failed to get time columns",
			zap.Int64("section_id", sectionID),
			zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Could not load time columns. Try again later.")
		return
	}

	h.sendMessage(ctx, b, chatID, FormatTimeColumns(sectionID, columns))
}

// Telegram rejects photo captions longer than this.
const maxCaptionRunes = 1024

func truncateCaption(s string) string {
	r := []rune(s)
	if len(r) <= maxCaptionRunes {
		return s
	}
	return string(r[:maxCaptionRunes-1]) + "…"
}
