// Package transport carries raw message text between a session and a
// server.
//
// The session never embeds transport specifics; it talks to a
// Connector, which knows how to open a connection, push one frame of
// message text at a time, surface inbound frames on a channel, and
// tear the connection down. The channel closing is the drop signal:
// whether the server went away or Close was called locally, the
// session notices the same way.
//
// Two connectors are provided:
//
//   - Websocket dials a server over a websocket and maps each text
//     message to one protocol frame. It may be reopened after a drop,
//     which is what reconnection does.
//   - Pipe wires two in-process ends directly together, for tests and
//     embedded servers. A pipe models a single connection and cannot
//     be reopened once closed.
package transport
