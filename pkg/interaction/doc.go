// Package interaction correlates outbound requests with their replies.
//
// Every client-initiated message carries an identifier the server echoes
// in its reply. The correlator reserves those identifiers, parks each
// request in a pending table, and completes the matching entry when the
// reply comes back on the inbound path.
//
// # Request Flow
//
// Callers reserve an identifier through Submit, send the built message
// themselves, then suspend on the returned handle:
//
//	corr := interaction.NewCorrelator(0)
//
//	p := corr.Submit(func(id uint32) wire.Message {
//		return &wire.Ping{Base: wire.Base{ID: id}}
//	}, wire.KindOk)
//
//	// after sending p.Request() over the transport:
//	reply, err := p.Await(ctx)
//
// # Resolution
//
// The inbound reader routes replies by identifier:
//
//	if !corr.Resolve(id, msg) {
//		// stale reply, already timed out or failed
//	}
//
// An Error reply fails the waiting caller with a *ServerError carrying
// the protocol error code. On disconnect, FailAll completes every
// outstanding entry so no caller stays suspended on a dead connection.
package interaction
