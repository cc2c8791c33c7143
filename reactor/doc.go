// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor owns the Linux epoll demultiplexer and the Reactor that
// dispatches its readiness events to registered api.Handler connections.
package reactor
