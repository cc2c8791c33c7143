// File: chatroom/worker.go
// Author: momentics <momentics@gmail.com>
//
// Worker is the chat-room engine. It owns the fd-to-username client-info
// table as a single-writer map (mutated only by its own goroutine, so no
// lock is needed) and implements the reactor.Worker interface so
// reactor.Reactor.Run can spawn it.

package chatroom

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/momentics/reactor-chat/api"
	"github.com/momentics/reactor-chat/internal/queue"
	"github.com/momentics/reactor-chat/metrics"
	"github.com/momentics/reactor-chat/protocol"
	"github.com/momentics/reactor-chat/reactor"
)

// Worker consumes framed JSON objects from a FIFO and fans text/file
// messages out to every connected client through the Reactor.
type Worker struct {
	q        *queue.FIFO
	listenFD int
	log      *zap.Logger
	metrics  *metrics.Registry
	ctrl     api.Control

	// clients maps fd to the username registered for it. Single-writer:
	// only this goroutine's Run loop ever touches it.
	clients map[int]string

	processed uint64
	dropped   uint64

	now func() time.Time
}

// New constructs a Worker that pops envelopes from q and broadcasts
// through whatever Reactor it is later handed, excluding listenFD from
// fan-out (the listening socket never receives chat traffic). reg and
// ctrl may be nil; the worker then skips the corresponding updates.
func New(q *queue.FIFO, listenFD int, log *zap.Logger, reg *metrics.Registry, ctrl api.Control) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{
		q:        q,
		listenFD: listenFD,
		log:      log,
		metrics:  reg,
		ctrl:     ctrl,
		clients:  make(map[int]string),
		now:      time.Now,
	}
}

// Run implements reactor.Worker. It blocks on q.WaitAndPop until the
// queue is closed, framing and dispatching each arrival.
func (w *Worker) Run(r *reactor.Reactor) {
	w.log.Info("chatroom worker run")
	for {
		env, ok := w.q.WaitAndPop()
		if !ok {
			w.log.Info("chatroom worker stopping")
			return
		}
		w.log.Info("got msg from queue", zap.Int("fd", env.SenderFD), zap.String("addr", env.PeerAddr), zap.Int("size", len(env.Payload)))

		frames := protocol.Frame(env.Payload)
		for _, frame := range frames {
			w.dispatch(r, env, frame)
		}
		w.processed++
		w.publishStats()
	}
}

// publishStats pushes the worker's counters into the control snapshot.
func (w *Worker) publishStats() {
	if w.ctrl == nil {
		return
	}
	w.ctrl.Set("envelopes_processed", w.processed)
	w.ctrl.Set("frames_dropped", w.dropped)
	w.ctrl.Set("participants", len(w.clients))
}

func (w *Worker) dispatch(r *reactor.Reactor, env api.Envelope, frame []byte) {
	typ, err := protocol.ParseType(frame)
	if err != nil {
		w.log.Warn("find exception", zap.Error(err))
		w.drop()
		return
	}
	switch typ {
	case protocol.TypeText:
		w.handleText(r, env, frame)
	case protocol.TypeFile:
		w.handleFile(r, env, frame)
	default:
		w.log.Warn("unknown type", zap.String("type", typ))
		w.drop()
	}
}

func (w *Worker) drop() {
	w.dropped++
	if w.metrics != nil {
		w.metrics.MessagesDropped.Inc()
	}
}

// handleText stores the username on a registration message (sender is
// "client"), otherwise rebuilds the broadcast object and fans it out.
func (w *Worker) handleText(r *reactor.Reactor, env api.Envelope, frame []byte) {
	var msg protocol.TextMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		w.log.Warn("find exception", zap.Error(err))
		w.drop()
		return
	}
	w.log.Info("start deal text msg", zap.ByteString("raw", frame))

	if msg.Sender == protocol.RoleClient {
		w.clients[env.SenderFD] = msg.Content
		w.log.Info("set client info", zap.Int("fd", env.SenderFD), zap.String("username", msg.Content))
		return
	}

	broadcast := protocol.NewBroadcastText(w.clients[env.SenderFD], msg.Content, w.now())
	payload, err := json.Marshal(broadcast)
	if err != nil {
		w.log.Warn("find exception", zap.Error(err))
		w.drop()
		return
	}
	n := r.Broadcast(w.listenFD, payload)
	w.log.Info("send msg", zap.ByteString("msg", payload), zap.Int("fanout", n))
	if w.metrics != nil {
		w.metrics.MessagesBroadcast.Add(float64(n))
	}
}

// handleFile relays both the metadata and the data step unchanged except
// for sender rewriting; the server never persists file content.
func (w *Worker) handleFile(r *reactor.Reactor, env api.Envelope, frame []byte) {
	var msg protocol.FileMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		w.log.Warn("find exception", zap.Error(err))
		w.drop()
		return
	}

	switch msg.MsgType {
	case protocol.FileMsgMetadata, protocol.FileMsgData:
		w.log.Info("get file msg", zap.String("msg_type", msg.MsgType), zap.Int("fd", env.SenderFD), zap.Int("size", len(frame)))
	default:
		w.log.Warn("unknown file msg type", zap.String("msg_type", msg.MsgType))
		w.drop()
		return
	}

	msg.Sender = w.clients[env.SenderFD]
	payload, err := json.Marshal(msg)
	if err != nil {
		w.log.Warn("find exception", zap.Error(err))
		w.drop()
		return
	}
	n := r.Broadcast(w.listenFD, payload)
	w.log.Info("send file msg", zap.Int("fanout", n))
	if w.metrics != nil {
		w.metrics.MessagesBroadcast.Add(float64(n))
	}
}
