package main

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/slack-go/slack"

	"github.com/tzrikka/bolt/pkg/auth"
)

type fakeSlack struct {
	triggerIDs []string
	modals     []slack.ModalViewRequest
	channels   []string
	err        error
}

func (f *fakeSlack) OpenViewContext(_ context.Context, triggerID string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
	f.triggerIDs = append(f.triggerIDs, triggerID)
	f.modals = append(f.modals, view)
	return &slack.ViewResponse{}, f.err
}

func (f *fakeSlack) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	return channelID, "1.2", f.err
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		apiErr       error
		wantErr      bool
		wantTriggers []string
		wantChannels []string
	}{
		{
			name:         "feedback_shortcut",
			body:         `{"type":"shortcut","callback_id":"give_feedback","trigger_id":"t1","user":{"id":"U1"}}`,
			wantTriggers: []string{"t1"},
		},
		{
			name:         "feedback_shortcut_api_error",
			body:         `{"type":"shortcut","callback_id":"give_feedback","trigger_id":"t1","user":{"id":"U1"}}`,
			apiErr:       errors.New("invalid_trigger_id"),
			wantErr:      true,
			wantTriggers: []string{"t1"},
		},
		{
			name:         "feedback_submission",
			body:         `{"type":"view_submission","user":{"id":"U1"},"view":{"callback_id":"feedback_modal","state":{"values":{"feedback_block":{"feedback_input":{"type":"plain_text_input","value":"nice"}}}}}}`,
			wantChannels: []string{"U1"},
		},
		{
			name:    "empty_feedback_submission",
			body:    `{"type":"view_submission","user":{"id":"U1"},"view":{"callback_id":"feedback_modal"}}`,
			wantErr: true,
		},
		{
			name: "feedback_canceled",
			body: `{"type":"view_closed","user":{"id":"U1"},"is_cleared":false,"view":{"callback_id":"feedback_modal"}}`,
		},
		{
			name:         "quote_message",
			body:         `{"type":"message_action","callback_id":"quote_message","trigger_id":"t2","channel":{"id":"C1"},"message":{"text":"hi","ts":"1.1"}}`,
			wantChannels: []string{"C1"},
		},
		{
			name:    "quote_message_without_message",
			body:    `{"type":"message_action","callback_id":"quote_message","trigger_id":"t2"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeSlack{err: tt.apiErr}
			r := (&app{bot: f}).router()

			err := r.Dispatch(t.Context(), tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Dispatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !slices.Equal(f.triggerIDs, tt.wantTriggers) {
				t.Errorf("opened views with trigger IDs %v, want %v", f.triggerIDs, tt.wantTriggers)
			}
			if !slices.Equal(f.channels, tt.wantChannels) {
				t.Errorf("posted messages to %v, want %v", f.channels, tt.wantChannels)
			}
		})
	}
}

func TestFeedbackModal(t *testing.T) {
	f := &fakeSlack{}
	r := (&app{bot: f}).router()

	if err := r.Dispatch(t.Context(), `{"type":"shortcut","callback_id":"give_feedback","trigger_id":"t1"}`); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	m := f.modals[0]
	if m.CallbackID != feedbackModal {
		t.Errorf("modal callback ID = %q, want %q", m.CallbackID, feedbackModal)
	}
	if !m.NotifyOnClose {
		t.Error("modal doesn't notify on close")
	}
	if len(m.Blocks.BlockSet) != 1 || m.Blocks.BlockSet[0].ID() != feedbackBlock {
		t.Errorf("modal blocks = %v, want a single %q block", m.Blocks.BlockSet, feedbackBlock)
	}
}

func TestRoutesWithoutBotToken(t *testing.T) {
	r := routes(auth.Credentials{SigningSecret: "s3cr3t"})

	err := r.Dispatch(t.Context(), `{"type":"shortcut","callback_id":"give_feedback","trigger_id":"t1"}`)
	if !errors.Is(err, errNoBotToken) {
		t.Errorf("Dispatch() error = %v, want %v", err, errNoBotToken)
	}
	if r.Len() != 4 {
		t.Errorf("routes() registered %d handlers, want 4", r.Len())
	}
}
