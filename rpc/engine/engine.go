package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corrix-dev/corrix/rpc/common"
	"github.com/corrix-dev/corrix/rpc/serializer"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("engine")

// SendFunc is the single mutable transport slot of an engine: it is invoked
// whenever the engine must hand a raw message to the wire. For server-side
// transports the session selects the connection the bytes belong to; the
// session itself never appears on the wire.
type SendFunc func(raw []byte, session any) error

// --------------------------------------------------------------------------
// Engine Core (shared by both variants)
// --------------------------------------------------------------------------

// core implements the full engine behavior once. The public Engine and
// SessionEngine types compose it and differ only in whether their API surface
// threads a session value.
type core struct {
	serializer serializer.ISerializer
	pending    *pendingTable
	dispatcher *dispatcher

	// nextID wraps at 32-bit width. Ids are unique only among currently
	// in-flight requests; no precaution is taken against a wrapped id
	// colliding with a very long-lived pending request.
	nextID atomic.Uint32

	sendMu sync.RWMutex
	send   SendFunc

	closed atomic.Bool
}

func newCore(s serializer.ISerializer, cfg common.EngineConfig) *core {
	return &core{
		serializer: s,
		pending:    newPendingTable(cfg),
		dispatcher: newDispatcher(),
	}
}

func (c *core) setSend(fn SendFunc) {
	c.sendMu.Lock()
	c.send = fn
	c.sendMu.Unlock()
}

// sendRaw hands bytes to the transport slot.
func (c *core) sendRaw(raw []byte, session any) error {
	c.sendMu.RLock()
	fn := c.send
	c.sendMu.RUnlock()
	if fn == nil {
		return fmt.Errorf("no transport attached")
	}
	return fn(raw, session)
}

// request encodes and sends a Request, registers it in the pending table and
// returns the future the caller awaits. The entry is registered before the
// bytes leave so a fast reply cannot race the registration.
func (c *core) request(method string, params []any, session any) *Future {
	fut := NewFuture()

	if c.closed.Load() {
		fut.Reject(common.NewErrorDetail(common.CodeInternalError, "", "engine is closed"))
		return fut
	}

	id := int64(c.nextID.Add(1))
	raw, err := c.serializer.Serialize(common.NewRequest(id, method, params))
	if err != nil {
		fut.Reject(common.NewErrorDetail(common.CodeInternalError, "", err.Error()))
		return fut
	}

	c.pending.add(id, fut)
	metricRequestsSent.Inc()

	// close() may have swept the table between the check above and the
	// insert; such an entry would otherwise linger until its timeout.
	if c.closed.Load() {
		c.pending.reject(id, common.NewErrorDetail(common.CodeInternalError, "", "engine shut down"))
		return fut
	}

	if err := c.sendRaw(raw, session); err != nil {
		// The send never made it to the wire, so no reply can arrive. Failed
		// sends are not retried.
		c.pending.reject(id, common.NewErrorDetail(common.CodeTransportError, "", err.Error()))
	}
	return fut
}

// notify encodes and sends a Notification. No reply is ever expected.
func (c *core) notify(method string, params []any, session any) error {
	if c.closed.Load() {
		return common.NewErrorDetail(common.CodeInternalError, "", "engine is closed")
	}

	raw, err := c.serializer.Serialize(common.NewNotification(method, params))
	if err != nil {
		return common.NewErrorDetail(common.CodeInternalError, "", err.Error())
	}
	metricNotifsSent.Inc()
	return c.sendRaw(raw, session)
}

// receive is the transport's entry point into the engine. It decodes the raw
// message, settles the matching pending request for replies, and dispatches
// requests and notifications.
func (c *core) receive(raw []byte, session any) {
	var msg common.Message
	if err := c.serializer.Deserialize(raw, &msg); err != nil {
		metricDecodeFailures.Inc()
		e := common.AsError(err, common.CodeParseError)
		Logger.Warningf("dropping undecodable message: %v", e)
		// The id is unknown at this point, so the error reply carries -1.
		c.respondError(common.NoID, e, session)
		return
	}

	switch msg.MsgType {
	case common.MsgTResponse:
		if c.pending.resolve(msg.ID, msg.Result) {
			metricRepliesMatched.Inc()
		} else {
			Logger.Debugf("ignoring response for unknown request id %d", msg.ID)
		}
	case common.MsgTError:
		if c.pending.reject(msg.ID, msg.Err) {
			metricRepliesMatched.Inc()
		} else {
			Logger.Debugf("ignoring error response for unknown request id %d", msg.ID)
		}
	case common.MsgTRequest, common.MsgTNotification:
		c.dispatch(&msg, session)
	}
}

// dispatch looks up the handler for an inbound Request or Notification, runs
// its guard pipeline and invokes it. Every failure becomes an error reply for
// a Request and is swallowed for a Notification.
func (c *core) dispatch(msg *common.Message, session any) {
	isRequest := msg.MsgType == common.MsgTRequest

	entry, ok := c.dispatcher.lookup(msg.Method)
	if !ok {
		metricUnknownMethods.Inc()
		if isRequest {
			c.respondError(msg.ID, common.NewErrorDetail(common.CodeMethodNotFound, "", msg.Method), session)
		} else {
			Logger.Debugf("dropping notification for unknown method %q", msg.Method)
		}
		return
	}

	if gerr := entry.runGuards(msg.Params, session); gerr != nil {
		metricGuardRejects.Inc()
		if isRequest {
			c.respondError(msg.ID, gerr, session)
		} else {
			Logger.Debugf("guard rejected notification %q: %v", msg.Method, gerr)
		}
		return
	}

	start := time.Now()
	result, err := entry.fn(msg.Params, session)
	metricHandlerDuration.UpdateDuration(start)

	if err != nil {
		metricHandlerErrors.Inc()
		if isRequest {
			c.respondError(msg.ID, common.NewErrorDetail(common.CodeApplicationError, "", err.Error()), session)
		} else {
			Logger.Debugf("handler for notification %q failed: %v", msg.Method, err)
		}
		return
	}

	// A handler may hand back a Future to defer its reply. The engine then
	// observes completion via a continuation instead of blocking the
	// delivering goroutine.
	if fut, isFuture := result.(*Future); isFuture {
		go c.settleDeferred(msg, fut, session, isRequest)
		return
	}

	if isRequest {
		c.respond(msg.ID, result, session)
	}
}

// settleDeferred waits for an asynchronous handler outcome and emits the
// reply once it settles.
func (c *core) settleDeferred(msg *common.Message, fut *Future, session any, isRequest bool) {
	value, err := fut.Result()
	if err != nil {
		metricHandlerErrors.Inc()
		if isRequest {
			c.respondError(msg.ID, common.NewErrorDetail(common.CodeApplicationError, "", err.Error()), session)
		} else {
			Logger.Debugf("deferred handler for notification %q failed: %v", msg.Method, err)
		}
		return
	}
	if isRequest {
		c.respond(msg.ID, value, session)
	}
}

// respond emits a success Response. A result the serializer cannot encode
// degrades into an INTERNAL_ERROR reply so the caller is never left waiting.
func (c *core) respond(id int64, result any, session any) {
	raw, err := c.serializer.Serialize(common.NewResponse(id, result))
	if err != nil {
		Logger.Errorf("failed to encode result for request %d: %v", id, err)
		c.respondError(id, common.NewErrorDetail(common.CodeInternalError, "", "unencodable result"), session)
		return
	}
	if err := c.sendRaw(raw, session); err != nil {
		Logger.Errorf("failed to send response for request %d: %v", id, err)
	}
}

// respondError emits an ErrorResponse. Failures here can only be logged.
func (c *core) respondError(id int64, e *common.Error, session any) {
	raw, err := c.serializer.Serialize(common.NewErrorResponse(id, e))
	if err != nil {
		Logger.Errorf("failed to encode error response for request %d: %v", id, err)
		return
	}
	if err := c.sendRaw(raw, session); err != nil {
		Logger.Errorf("failed to send error response for request %d: %v", id, err)
	}
}

// close tears the engine down: every outstanding future is rejected, the
// handler registry is cleared, the sweeper stops and the transport slot is
// detached. The engine must not be used afterwards.
func (c *core) close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.pending.rejectAll(common.NewErrorDetail(common.CodeInternalError, "", "engine shut down"))
	c.dispatcher.clear()
	c.setSend(nil)
}

// --------------------------------------------------------------------------
// Engine (without session support)
// --------------------------------------------------------------------------

// Engine is the session-less variant: handlers and guards see only the call
// parameters, and the transport callback carries only raw bytes.
type Engine struct {
	c *core
}

// New creates a new Engine using the given serializer and configuration.
func New(s serializer.ISerializer, cfg common.EngineConfig) *Engine {
	return &Engine{c: newCore(s, cfg)}
}

// OnSend installs the transport callback. Passing nil detaches it.
func (e *Engine) OnSend(fn func(raw []byte) error) {
	if fn == nil {
		e.c.setSend(nil)
		return
	}
	e.c.setSend(func(raw []byte, _ any) error { return fn(raw) })
}

// Receive feeds one raw inbound message into the engine.
func (e *Engine) Receive(raw []byte) {
	e.c.receive(raw, nil)
}

// Request sends a Request for the method and returns the future that settles
// with its reply, an error reply, or a timeout.
func (e *Engine) Request(method string, params ...any) *Future {
	return e.c.request(method, params, nil)
}

// Notify sends a Notification for the method. No reply is ever produced.
func (e *Engine) Notify(method string, params ...any) error {
	return e.c.notify(method, params, nil)
}

// Handle registers a handler for the method, replacing any prior
// registration, and returns the handle used to attach guards.
func (e *Engine) Handle(method string, fn func(params []any) (any, error)) *HandlerEntry {
	return e.c.dispatcher.register(method, func(params []any, _ any) (any, error) {
		return fn(params)
	})
}

// Pending returns the number of in-flight outgoing requests.
func (e *Engine) Pending() int {
	return e.c.pending.size()
}

// Close rejects all outstanding requests with an internal shutdown error,
// clears the handler registry and detaches the transport.
func (e *Engine) Close() {
	e.c.close()
}

// --------------------------------------------------------------------------
// SessionEngine (with session support)
// --------------------------------------------------------------------------

// SessionEngine is the session-aware variant: an opaque per-call value (for
// example the connection a message arrived on) travels alongside the raw
// bytes through decode, guards, handler and reply without ever being
// serialized.
type SessionEngine struct {
	c *core
}

// NewSessionEngine creates a new SessionEngine using the given serializer
// and configuration.
func NewSessionEngine(s serializer.ISerializer, cfg common.EngineConfig) *SessionEngine {
	return &SessionEngine{c: newCore(s, cfg)}
}

// OnSend installs the transport callback. Passing nil detaches it.
func (e *SessionEngine) OnSend(fn SendFunc) {
	e.c.setSend(fn)
}

// Receive feeds one raw inbound message into the engine together with the
// session value of its delivery.
func (e *SessionEngine) Receive(raw []byte, session any) {
	e.c.receive(raw, session)
}

// Request sends a Request carrying the session to the transport callback and
// returns the future that settles with its reply.
func (e *SessionEngine) Request(session any, method string, params ...any) *Future {
	return e.c.request(method, params, session)
}

// Notify sends a Notification carrying the session to the transport callback.
func (e *SessionEngine) Notify(session any, method string, params ...any) error {
	return e.c.notify(method, params, session)
}

// Handle registers a session-aware handler for the method, replacing any
// prior registration, and returns the handle used to attach guards.
func (e *SessionEngine) Handle(method string, fn HandlerFunc) *HandlerEntry {
	return e.c.dispatcher.register(method, fn)
}

// Pending returns the number of in-flight outgoing requests.
func (e *SessionEngine) Pending() int {
	return e.c.pending.size()
}

// Close rejects all outstanding requests with an internal shutdown error,
// clears the handler registry and detaches the transport.
func (e *SessionEngine) Close() {
	e.c.close()
}
