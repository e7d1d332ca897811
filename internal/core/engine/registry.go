package engine

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Handler executes one action type. Implementations catch their own
// failures and report them through the result envelope; nothing may
// escape Handle.
type Handler interface {
	Type() string
	Handle(ctx context.Context, config map[string]interface{}, actx *ActionContext) ActionResult
}

// HandlerDeps carries the external collaborators action handlers need
type HandlerDeps struct {
	Email          EmailSender
	HTTPClient     *http.Client
	WebhookTimeout time.Duration
}

// Registry maps action type names to handlers. It is built once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the closed set of known action handlers
func NewRegistry(deps HandlerDeps) *Registry {
	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{}
	}
	if deps.WebhookTimeout <= 0 {
		deps.WebhookTimeout = 15 * time.Second
	}

	r := &Registry{handlers: make(map[string]Handler)}
	for _, h := range []Handler{
		&createTaskHandler{},
		&updateTaskHandler{},
		&updateClientFieldHandler{},
		&updateEntityFieldHandler{},
		&sendNotificationHandler{},
		&sendEmailHandler{email: deps.Email},
		&callWebhookHandler{client: deps.HTTPClient, timeout: deps.WebhookTimeout},
		&assignUserHandler{},
		&createInvoiceHandler{},
	} {
		r.handlers[h.Type()] = h
	}
	return r
}

// Types returns the registered action type names
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch routes a resolved configuration to the handler for
// actionType and stamps the elapsed time on the result. An
// unregistered type is a configuration error recorded as a failed
// action, never a crash; a panicking handler is converted to a failure
// the same way.
func (r *Registry) Dispatch(ctx context.Context, actionType string, config map[string]interface{}, actx *ActionContext) (result ActionResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = ActionResult{Success: false, Error: fmt.Sprintf("action handler panicked: %v", rec)}
		}
		result.ExecutionTimeMs = time.Since(start).Milliseconds()
	}()

	handler, ok := r.handlers[actionType]
	if !ok {
		return ActionResult{Success: false, Error: fmt.Sprintf("no handler found for action type %q", actionType)}
	}
	return handler.Handle(ctx, config, actx)
}
