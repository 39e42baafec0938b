package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/controller/handlers"
	"github.com/Freeeeeet/timetable/internal/model"
)

type BotController struct {
	bot         *bot.Bot
	handlers    *handlers.Handlers
	adminChatID int64
	logger      *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	schedules handlers.ScheduleReader,
	columns handlers.TimeColumnReader,
	conflicts handlers.ConflictCounter,
	renderer handlers.ScheduleRenderer,
	adminChatID int64,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:         botInstance,
		handlers:    handlers.NewHandlers(schedules, columns, conflicts, renderer, logger),
		adminChatID: adminChatID,
		logger:      logger,
	}
}

// RegisterHandlers registers the command handlers and the command menu.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/conflicts", bot.MatchTypeExact, c.handlers.HandleConflicts)

	// These take an argument.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypePrefix, c.handlers.HandleSchedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/times", bot.MatchTypePrefix, c.handlers.HandleTimes)

	return c.setCommands(ctx)
}

func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "conflicts", Description: "⚠️ Count scheduling conflicts"},
		{Command: "schedule", Description: "🗓 Section timetable: /schedule <id>"},
		{Command: "times", Description: "🕒 Section time columns: /times <id>"},
		{Command: "help", Description: "❓ Command help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start runs the long-polling loop until ctx is cancelled.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}

// NotifyConflicts posts an audit summary to the admin chat. It does nothing
// when no admin chat is configured or the report is clean.
func (c *BotController) NotifyConflicts(ctx context.Context, report *model.ConflictReport) error {
	if c.adminChatID == 0 || report == nil || report.ConflictCount == 0 {
		return nil
	}

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.adminChatID,
		Text:   "🔎 Conflict audit\n\n" + handlers.FormatConflictReport(report),
	})
	if err != nil {
		return fmt.Errorf("send conflict notification: %w", err)
	}
	return nil
}
