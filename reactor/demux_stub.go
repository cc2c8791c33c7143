//go:build !linux
// +build !linux

// File: reactor/demux_stub.go
// Author: momentics <momentics@gmail.com>
//
// The only real demultiplexer is the edge-triggered epoll backend in
// demux_linux.go. Other platforms get this stub so the module still
// builds and vets there.

package reactor

import "github.com/momentics/reactor-chat/api"

// NewDemultiplexer returns ErrNotSupported outside Linux.
func NewDemultiplexer() (api.Demultiplexer, error) {
	return nil, api.ErrNotSupported
}
