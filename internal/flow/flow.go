// Package flow implements the top-level orchestration (C13, spec
// §4.11): the single entrypoint that threads a request through memory,
// routing, and the selected specialist.
package flow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/X-Luffy/Law-Agent/internal/logging"
	"github.com/X-Luffy/Law-Agent/internal/memory"
	"github.com/X-Luffy/Law-Agent/internal/observability"
	"github.com/X-Luffy/Law-Agent/internal/router"
	"github.com/X-Luffy/Law-Agent/internal/specialist"
	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// DefaultSessionID is used when a caller doesn't supply one (spec
// §4.11: `execute(..., session_id="default")`).
const DefaultSessionID = "default"

// apologyMessage is returned when any step of Execute raises an
// uncaught exception (spec §4.11: "any exception caught and translated
// to a user-visible apology").
const apologyMessage = "抱歉，处理您的请求时出现了问题，请稍后重试。"

// StatusFunc mirrors specialist.StatusFunc; kept as its own type so
// Flow's public API doesn't force callers to import internal/specialist.
type StatusFunc func(stage, detail, state string)

// Flow is the runtime's single entrypoint (C13). It owns the Memory
// Manager, the Router, and a pool of Specialists keyed by domain.
type Flow struct {
	mem         *memory.Manager
	route       *router.Router
	specialists map[models.LegalDomain]*specialist.Specialist
	tracer      *observability.Tracer
}

// New builds a Flow. specialists must have one entry per
// models.AllDomains member; when the routed domain has no entry,
// Execute logs the wiring error, reports it through the status
// callback, and returns the canned apology.
func New(mem *memory.Manager, route *router.Router, specialists map[models.LegalDomain]*specialist.Specialist) *Flow {
	return &Flow{mem: mem, route: route, specialists: specialists}
}

// WithTracer attaches an optional Tracer so Execute emits a span around
// the routing step (SPEC_FULL.md DOMAIN STACK: spans around route →
// dispatch → critic). A nil tracer leaves routing untraced.
func (f *Flow) WithTracer(tracer *observability.Tracer) *Flow {
	f.tracer = tracer
	return f
}

func (f *Flow) notify(cb StatusFunc, stage, detail, state string) {
	if cb == nil {
		return
	}
	defer func() { _ = recover() }()
	cb(stage, detail, state)
}

// Execute runs the exact 9-step sequence in spec §4.11. Any internal
// error is caught and translated into the canned apology rather than
// propagated to the caller.
func (f *Flow) Execute(ctx context.Context, input string, status StatusFunc, sessionID string) (response string) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	log := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error("flow: recovered from panic", "panic", r)
			f.notify(status, "error", fmt.Sprintf("%v", r), "error")
			response = apologyMessage
		}
	}()

	// 1. memory.add_message("user", input, session_id)
	f.mem.AddMessage(sessionID, models.RoleUser, input)

	// 2. context <- memory.get_full_context(input, session_id)
	contextBlock := f.mem.GetFullContext(ctx, input, sessionID)

	// 3. (domain, intent, entities) <- core_agent.route(input, context)
	f.notify(status, "route", "", "running")
	var routeSpan trace.Span
	routeCtx := ctx
	if f.tracer != nil {
		routeCtx, routeSpan = f.tracer.TraceRoute(ctx, input)
	}
	domain, intent, entities, err := f.route.Route(routeCtx, input, contextBlock)
	if routeSpan != nil {
		f.tracer.RecordError(routeSpan, err)
		routeSpan.End()
	}
	if err != nil {
		log.Error("flow: route failed", "error", err)
		f.notify(status, "route", err.Error(), "error")
		return apologyMessage
	}
	f.notify(status, "route", string(domain), "complete")

	// 4. if entities non-empty: global_state.update(...); recompute context
	if !entities.IsEmpty() {
		f.mem.GlobalState(sessionID).Update(domain, intent, entities)
		contextBlock = f.mem.GetFullContext(ctx, input, sessionID)
	}

	// 5. agent <- agents[domain]
	sp, ok := f.specialists[domain]
	if !ok {
		log.Error("flow: no specialist registered for domain", "domain", domain)
		f.notify(status, "dispatch", "no specialist for domain "+string(domain), "error")
		return apologyMessage
	}

	// 6. response <- agent.run(input, context=context, domain, intent, status_callback)
	specialistStatus := specialist.StatusFunc(func(stage, detail, state string) { f.notify(status, stage, detail, state) })
	result, err := sp.ExecuteTask(ctx, input, intent, contextBlock, specialistStatus)
	if err != nil {
		log.Error("flow: specialist failed", "domain", domain, "error", err)
		f.notify(status, "dispatch", err.Error(), "error")
		return apologyMessage
	}

	// 7. memory.add_message("assistant", response, session_id)
	f.mem.AddMessage(sessionID, models.RoleAssistant, result)

	// 8. memory.check_and_archive(session_id)
	f.mem.CheckAndArchive(ctx, sessionID)

	f.notify(status, "done", "", "complete")

	// 9. return response
	return result
}
