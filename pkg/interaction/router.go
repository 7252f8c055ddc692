package interaction

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handler processes a specific [Kind] of interaction. Errors are logged,
// but Slack receives the same generic error response regardless.
type Handler[T Payload] func(ctx context.Context, payload *T) error

// Router maps interaction identifiers to handlers, separately for each [Kind].
//
// Handlers must be registered before the router starts dispatching
// payloads: after that, the router is read-only, and therefore
// safe for concurrent use without locking.
type Router struct {
	blockActions    map[string]Handler[BlockAction]
	messageActions  map[string]Handler[MessageAction]
	shortcuts       map[string]Handler[Shortcut]
	viewsClosed     map[string]Handler[ViewClosed]
	viewSubmissions map[string]Handler[ViewSubmission]
}

func NewRouter() *Router {
	return &Router{
		blockActions:    map[string]Handler[BlockAction]{},
		messageActions:  map[string]Handler[MessageAction]{},
		shortcuts:       map[string]Handler[Shortcut]{},
		viewsClosed:     map[string]Handler[ViewClosed]{},
		viewSubmissions: map[string]Handler[ViewSubmission]{},
	}
}

// OnBlockAction registers a handler for block actions with the given trigger ID.
func (r *Router) OnBlockAction(triggerID string, h Handler[BlockAction]) {
	register(r.blockActions, KindBlockAction, triggerID, h)
}

// OnMessageAction registers a handler for message shortcuts with the given callback ID.
func (r *Router) OnMessageAction(callbackID string, h Handler[MessageAction]) {
	register(r.messageActions, KindMessageAction, callbackID, h)
}

// OnShortcut registers a handler for global shortcuts with the given callback ID.
func (r *Router) OnShortcut(callbackID string, h Handler[Shortcut]) {
	register(r.shortcuts, KindShortcut, callbackID, h)
}

// OnViewClosed registers a handler for closed views with the given callback ID.
func (r *Router) OnViewClosed(callbackID string, h Handler[ViewClosed]) {
	register(r.viewsClosed, KindViewClosed, callbackID, h)
}

// OnViewSubmission registers a handler for submitted views with the given callback ID.
func (r *Router) OnViewSubmission(callbackID string, h Handler[ViewSubmission]) {
	register(r.viewSubmissions, KindViewSubmission, callbackID, h)
}

// register adds or replaces a handler: the last registration wins.
func register[T Payload](m map[string]Handler[T], k Kind, id string, h Handler[T]) {
	if _, ok := m[id]; ok {
		log.Debug().Str("kind", k.String()).Str("id", id).Msg("replacing interaction handler")
	}
	m[id] = h
}

// Remove unregisters the handler of the given kind and identifier, if there is one.
func (r *Router) Remove(k Kind, id string) {
	switch k {
	case KindBlockAction:
		delete(r.blockActions, id)
	case KindMessageAction:
		delete(r.messageActions, id)
	case KindShortcut:
		delete(r.shortcuts, id)
	case KindViewClosed:
		delete(r.viewsClosed, id)
	case KindViewSubmission:
		delete(r.viewSubmissions, id)
	}
}

// Len returns the total number of registered handlers.
func (r *Router) Len() int {
	return len(r.blockActions) + len(r.messageActions) + len(r.shortcuts) +
		len(r.viewsClosed) + len(r.viewSubmissions)
}

// Dispatch decodes an authenticated interaction payload, and calls the
// handler that was registered for its kind and identifier. Errors returned
// by the handler are passed through as-is.
func (r *Router) Dispatch(ctx context.Context, body string) error {
	raw := []byte(body)

	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrapf(ErrParsing, "%v", err)
	}
	if envelope == nil {
		return errors.Wrap(ErrParsing, "payload is not a JSON object")
	}

	var t string
	if err := json.Unmarshal(envelope["type"], &t); err != nil || t == "" {
		return errors.Wrap(ErrParsing, "missing type")
	}

	k, ok := KindOf(t)
	if !ok {
		return errors.Wrapf(ErrUnknownType, "%q", t)
	}

	l := zerolog.Ctx(ctx).With().Str("interaction_type", t).Logger()
	ctx = l.WithContext(ctx)

	switch k {
	case KindBlockAction:
		return route[BlockAction](ctx, k, raw, r.blockActions)
	case KindMessageAction:
		return route[MessageAction](ctx, k, raw, r.messageActions)
	case KindShortcut:
		return route[Shortcut](ctx, k, raw, r.shortcuts)
	case KindViewClosed:
		return route[ViewClosed](ctx, k, raw, r.viewsClosed)
	default: // KindViewSubmission.
		return route[ViewSubmission](ctx, k, raw, r.viewSubmissions)
	}
}

// route deserializes a payload into its specific kind,
// and calls the handler that claims its identifier.
func route[T Payload, PT interface {
	*T
	identifiable
}](ctx context.Context, k Kind, body []byte, handlers map[string]Handler[T]) error {
	p := PT(new(T))
	if err := json.Unmarshal(body, p); err != nil {
		return kindError(k, errors.Wrapf(ErrParsing, "%v", err))
	}

	id := p.Identifier()
	if id == "" {
		return kindError(k, errors.Wrap(ErrParsing, "missing identifier"))
	}

	h, ok := handlers[id]
	if !ok {
		return kindError(k, errors.Wrapf(ErrUnknownIdentifier, "%q", id))
	}

	zerolog.Ctx(ctx).Debug().Str("kind", k.String()).Str("id", id).Msg("dispatching interaction")
	return h(ctx, (*T)(p))
}
