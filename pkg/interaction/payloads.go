package interaction

import (
	"github.com/slack-go/slack"
)

// Payload is a decoded interaction, which knows its own routing identifier.
type Payload interface {
	BlockAction | MessageAction | Shortcut | ViewClosed | ViewSubmission
}

type identifiable interface {
	Identifier() string
}

// https://docs.slack.dev/reference/interaction-payloads/block_actions-payload
type BlockAction struct {
	Type        string              `json:"type"`
	TriggerID   string              `json:"trigger_id"`
	ResponseURL string              `json:"response_url,omitempty"`
	User        User                `json:"user"`
	Team        *slack.Team         `json:"team,omitempty"`
	Channel     *Channel            `json:"channel,omitempty"`
	Message     *Message            `json:"message,omitempty"`
	View        *slack.View         `json:"view,omitempty"`
	Actions     []slack.BlockAction `json:"actions"`
	Hash        string              `json:"hash,omitempty"`
	State       *slack.ViewState    `json:"state,omitempty"`
}

// Identifier returns the payload's trigger ID.
func (p *BlockAction) Identifier() string {
	return p.TriggerID
}

// https://docs.slack.dev/reference/interaction-payloads/shortcuts-interaction-payload
// (message shortcuts).
type MessageAction struct {
	Type        string      `json:"type"`
	CallbackID  string      `json:"callback_id"`
	TriggerID   string      `json:"trigger_id"`
	ResponseURL string      `json:"response_url,omitempty"`
	User        User        `json:"user"`
	Message     *Message    `json:"message,omitempty"`
	Channel     *Channel    `json:"channel,omitempty"`
	Team        *slack.Team `json:"team,omitempty"`
}

func (p *MessageAction) Identifier() string {
	return p.CallbackID
}

// https://docs.slack.dev/reference/interaction-payloads/shortcuts-interaction-payload
// (global shortcuts).
type Shortcut struct {
	Type       string      `json:"type"`
	CallbackID string      `json:"callback_id"`
	TriggerID  string      `json:"trigger_id"`
	ActionTS   string      `json:"action_ts,omitempty"`
	Team       *slack.Team `json:"team,omitempty"`
	User       User        `json:"user"`
}

func (p *Shortcut) Identifier() string {
	return p.CallbackID
}

// https://docs.slack.dev/reference/interaction-payloads/view-interactions-payload#view_closed
type ViewClosed struct {
	Type      string      `json:"type"`
	Team      *slack.Team `json:"team,omitempty"`
	User      User        `json:"user"`
	View      slack.View  `json:"view"`
	IsCleared bool        `json:"is_cleared"`
}

// Identifier returns the callback ID of the closed view.
func (p *ViewClosed) Identifier() string {
	return p.View.CallbackID
}

// https://docs.slack.dev/reference/interaction-payloads/view-interactions-payload#view_submission
type ViewSubmission struct {
	Type         string        `json:"type"`
	Team         *slack.Team   `json:"team,omitempty"`
	User         User          `json:"user"`
	View         slack.View    `json:"view"`
	Hash         string        `json:"hash,omitempty"`
	ResponseURLs []ResponseURL `json:"response_urls,omitempty"`
}

// Identifier returns the callback ID of the submitted view.
func (p *ViewSubmission) Identifier() string {
	return p.View.CallbackID
}

// User is the user who triggered an interaction.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
}

type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Message struct {
	Type     string `json:"type,omitempty"`
	User     string `json:"user,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
	Text     string `json:"text,omitempty"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// ResponseURL is included in view submissions only if the view
// contains input blocks which are configured to generate them.
type ResponseURL struct {
	BlockID     string `json:"block_id,omitempty"`
	ActionID    string `json:"action_id,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
	ResponseURL string `json:"response_url"`
}
