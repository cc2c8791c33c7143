// File: api/envelope.go
// Author: momentics <momentics@gmail.com>
//
// The inbound message envelope handed from the I/O side to the chat-room
// worker across the cross-goroutine queue: sender fd, peer address
// string, raw bytes.

package api

// Envelope carries one drained recv buffer plus its origin from the I/O
// goroutine to the chat-room worker. It lives only between Push and
// WaitAndPop; ownership of Payload transfers with it.
type Envelope struct {
	SenderFD int
	PeerAddr string
	Payload  []byte
}
