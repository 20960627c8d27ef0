// Package pipe provides an in-process paired transport. Two engines bound to
// the two ends of a pipe talk to each other without any sockets, which makes
// it the transport of choice for tests and same-process wiring.
package pipe

import (
	"fmt"
	"sync"

	"github.com/corrix-dev/corrix/rpc/transport"
)

// pipeTransport is one end of the pair. Messages sent on one end are
// delivered, in order, to the receiver registered on the other end.
type pipeTransport struct {
	out  chan<- []byte
	in   <-chan []byte
	done chan struct{}
	once *sync.Once

	recvMu sync.RWMutex
	recv   transport.ReceiveFunc

	started sync.Once
}

// New creates the two connected ends of a pipe. Closing either end closes
// both.
func New() (transport.ITransport, transport.ITransport) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	done := make(chan struct{})
	once := &sync.Once{}

	a := &pipeTransport{out: ab, in: ba, done: done, once: once}
	b := &pipeTransport{out: ba, in: ab, done: done, once: once}
	return a, b
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ITransport)
// --------------------------------------------------------------------------

func (t *pipeTransport) Deliver(recv transport.ReceiveFunc) {
	t.recvMu.Lock()
	t.recv = recv
	t.recvMu.Unlock()

	t.started.Do(func() { go t.readLoop() })
}

func (t *pipeTransport) Send(raw []byte, _ any) error {
	// Copy: the caller may reuse its buffer after Send returns.
	buf := make([]byte, len(raw))
	copy(buf, raw)

	select {
	case <-t.done:
		return fmt.Errorf("pipe is closed")
	case t.out <- buf:
		return nil
	}
}

func (t *pipeTransport) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *pipeTransport) readLoop() {
	for {
		select {
		case <-t.done:
			return
		case raw := <-t.in:
			t.recvMu.RLock()
			recv := t.recv
			t.recvMu.RUnlock()
			if recv != nil {
				recv(raw, nil)
			}
		}
	}
}
