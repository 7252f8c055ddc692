package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/tzrikka/bolt/pkg/auth"
	"github.com/tzrikka/bolt/pkg/interaction"
)

const (
	feedbackShortcut = "give_feedback"
	feedbackModal    = "feedback_modal"
	feedbackBlock    = "feedback_block"
	feedbackInput    = "feedback_input"

	quoteMessageAction = "quote_message"
)

var errNoBotToken = errors.New("Slack bot token is not configured")

// slackAPI is the subset of [slack.Client] that the example handlers use.
type slackAPI interface {
	OpenViewContext(ctx context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

type app struct {
	bot slackAPI
}

// routes registers the example app's interaction handlers.
func routes(creds auth.Credentials) *interaction.Router {
	a := &app{}
	if c := creds.BotClient(); c != nil {
		a.bot = c
	}
	return a.router()
}

func (a *app) router() *interaction.Router {
	r := interaction.NewRouter()
	r.OnShortcut(feedbackShortcut, a.openFeedbackModal)
	r.OnViewSubmission(feedbackModal, a.sendFeedbackReceipt)
	r.OnViewClosed(feedbackModal, a.logFeedbackCanceled)
	r.OnMessageAction(quoteMessageAction, a.quoteMessage)
	return r
}

// openFeedbackModal handles the global shortcut.
func (a *app) openFeedbackModal(ctx context.Context, p *interaction.Shortcut) error {
	if a.bot == nil {
		return errors.WithStack(errNoBotToken)
	}

	modal := slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: feedbackModal,
		Title:      plainText("Feedback"),
		Submit:     plainText("Send"),
		Close:      plainText("Cancel"),
		Blocks: slack.Blocks{BlockSet: []slack.Block{
			slack.NewInputBlock(feedbackBlock, plainText("What's on your mind?"), nil,
				slack.NewPlainTextInputBlockElement(nil, feedbackInput)),
		}},
		NotifyOnClose: true,
	}

	if _, err := a.bot.OpenViewContext(ctx, p.TriggerID, modal); err != nil {
		return errors.Wrap(err, "failed to open feedback modal")
	}
	return nil
}

// sendFeedbackReceipt sends the submitted feedback back to its author, as a DM.
func (a *app) sendFeedbackReceipt(ctx context.Context, p *interaction.ViewSubmission) error {
	if a.bot == nil {
		return errors.WithStack(errNoBotToken)
	}

	feedback := ""
	if p.View.State != nil {
		feedback = p.View.State.Values[feedbackBlock][feedbackInput].Value
	}
	if feedback == "" {
		return errors.New("empty feedback submission")
	}

	zerolog.Ctx(ctx).Info().Str("user_id", p.User.ID).Int("length", len(feedback)).
		Msg("received feedback")

	msg := slack.MsgOptionText("Thanks! We received your feedback:\n>"+feedback, false)
	if _, _, err := a.bot.PostMessageContext(ctx, p.User.ID, msg); err != nil {
		return errors.Wrap(err, "failed to send feedback receipt")
	}
	return nil
}

func (a *app) logFeedbackCanceled(ctx context.Context, p *interaction.ViewClosed) error {
	zerolog.Ctx(ctx).Info().Str("user_id", p.User.ID).Bool("is_cleared", p.IsCleared).
		Msg("feedback modal canceled")
	return nil
}

// quoteMessage replies to the message in a thread, quoting it.
func (a *app) quoteMessage(ctx context.Context, p *interaction.MessageAction) error {
	if a.bot == nil {
		return errors.WithStack(errNoBotToken)
	}
	if p.Channel == nil || p.Message == nil {
		return errors.New("message action without channel or message")
	}

	_, _, err := a.bot.PostMessageContext(ctx, p.Channel.ID,
		slack.MsgOptionText(">"+p.Message.Text, false),
		slack.MsgOptionTS(p.Message.TS))
	if err != nil {
		return errors.Wrap(err, "failed to quote message")
	}
	return nil
}

func plainText(s string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, s, false, false)
}
