// Package timeouts defines shared timeout constants used by the poll process.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing the health endpoint.
const GRPCDial = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second

// FrameWrite bounds a single WebSocket frame write so one stalled peer cannot
// hold up a broadcast.
const FrameWrite = 2 * time.Second
