package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

const slashAck = "Looking that up..."

const emptyQuestionReply = "Ask me about today's sales, a comparison with yesterday, last week or last month, " +
	"top-selling products, or the sales channel mix."

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// MessagePoster is the part of *slack.Client used to reply in a thread.
type MessagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackHandler answers app mentions, direct messages and slash commands.
// Slack expects an ack within three seconds, so answers are posted asynchronously.
type SlackHandler struct {
	assistant    Asker
	poster       MessagePoster
	replyTimeout time.Duration
	logger       *slog.Logger
	pending      sync.WaitGroup
}

func NewSlackHandler(assistant Asker, poster MessagePoster, replyTimeout time.Duration, logger *slog.Logger) *SlackHandler {
	return &SlackHandler{
		assistant:    assistant,
		poster:       poster,
		replyTimeout: replyTimeout,
		logger:       logger,
	}
}

// Events handles POST /slack/events.
func (h *SlackHandler) Events(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := slackevents.ParseEvent(body, slackevents.OptionNoVerifyToken())
	if err != nil {
		// Unsupported inner event types still get an ack so Slack stops retrying.
		h.logger.Warn("unhandled slack event", "error", err)
		c.Status(http.StatusOK)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		challenge, ok := event.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, challenge.Challenge)
		return
	case slackevents.CallbackEvent:
		// Slack redelivers events it thinks timed out; the first delivery is already being answered.
		if c.GetHeader("X-Slack-Retry-Num") != "" {
			c.Status(http.StatusOK)
			return
		}
		h.dispatch(event.InnerEvent)
	}
	c.Status(http.StatusOK)
}

func (h *SlackHandler) dispatch(inner slackevents.EventsAPIInnerEvent) {
	switch ev := inner.Data.(type) {
	case *slackevents.AppMentionEvent:
		if ev.BotID != "" {
			return
		}
		h.replyInThread(ev.Channel, threadTS(ev.ThreadTimeStamp, ev.TimeStamp), ev.User, ev.Text)
	case *slackevents.MessageEvent:
		if ev.ChannelType != "im" || ev.BotID != "" || ev.SubType != "" || ev.User == "" {
			return
		}
		h.replyInThread(ev.Channel, threadTS(ev.ThreadTimeStamp, ev.TimeStamp), ev.User, ev.Text)
	}
}

func (h *SlackHandler) replyInThread(channel, ts, user, text string) {
	question := cleanQuestion(text)
	h.logger.Info("slack question received", "channel", channel, "user", user)

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.replyTimeout)
		defer cancel()

		reply := emptyQuestionReply
		if question != "" {
			reply = h.assistant.Ask(ctx, question)
		}
		if _, _, err := h.poster.PostMessageContext(ctx, channel,
			slack.MsgOptionText(reply, false),
			slack.MsgOptionTS(ts),
		); err != nil {
			h.logger.Error("failed to post slack reply", "channel", channel, "error", err)
		}
	}()
}

// Commands handles POST /slack/commands.
func (h *SlackHandler) Commands(c *gin.Context) {
	cmd, err := slack.SlashCommandParse(c.Request)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(cmd.Text)
	if question == "" {
		c.JSON(http.StatusOK, gin.H{"response_type": slack.ResponseTypeEphemeral, "text": emptyQuestionReply})
		return
	}
	h.logger.Info("slash command received", "command", cmd.Command, "channel", cmd.ChannelID, "user", cmd.UserID)

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), h.replyTimeout)
		defer cancel()

		reply := h.assistant.Ask(ctx, question)
		msg := &slack.WebhookMessage{
			ResponseType: slack.ResponseTypeInChannel,
			Text:         "> " + question + "\n" + reply,
		}
		if err := slack.PostWebhookContext(ctx, cmd.ResponseURL, msg); err != nil {
			h.logger.Error("failed to post slash command reply", "command", cmd.Command, "error", err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"response_type": slack.ResponseTypeEphemeral, "text": slashAck})
}

// Wait blocks until in-flight replies finish or ctx ends.
func (h *SlackHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func cleanQuestion(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

func threadTS(threadTS, ts string) string {
	if threadTS != "" {
		return threadTS
	}
	return ts
}
