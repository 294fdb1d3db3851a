// Package discovery implements mDNS/DNS-SD browsing for device servers.
//
// Intiface-compatible servers advertise the _intiface_engine._tcp service
// on the local domain. Browsing yields one ServerCandidate per instance,
// with addresses aggregated across network interfaces as they are resolved.
// Candidates expose websocket URLs suitable for transport.NewWebsocket.
//
// Discovery is browse-only. The client never advertises a service of its
// own; servers announce themselves and clients dial.
package discovery
