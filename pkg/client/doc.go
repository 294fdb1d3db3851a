// Package client implements the Buttplug client session.
//
// Client owns one connection to a Buttplug server and everything that
// happens on it:
//
//   - Versioned handshake and schema version negotiation
//   - Request/response correlation on a single shared connection
//   - The device registry, mirrored from server announcements
//   - Ordered delivery of server push events to subscribers
//   - Keepalive pings when the server enforces a ping timeout
//   - Automatic reconnection after unexpected connection loss
//
// Example usage:
//
//	connector := transport.NewWebsocket(transport.WebsocketConfig{
//		URL: "ws://127.0.0.1:12345",
//	})
//	c, err := client.NewClient(connector, client.DefaultConfig())
//	if err != nil {
//		...
//	}
//
//	if err := c.Connect(ctx); err != nil {
//		...
//	}
//	defer c.Disconnect(context.Background())
//
//	c.Subscribe(func(ev events.Event) {
//		if ev.Type == events.TypeDeviceAdded {
//			fmt.Println("found", ev.Device.Name())
//		}
//	})
//
//	c.StartScanning(ctx)
//
// # Concurrency
//
// All exported methods are safe for concurrent use. Requests from any
// number of goroutines share the connection; the correlator matches
// each reply to its caller by message identifier. Push events are
// delivered to subscribers one at a time, in arrival order, from the
// session's read goroutine.
//
// # Connection loss
//
// When the transport drops without a local Disconnect, every
// outstanding request fails with ErrConnectionLost, the device registry
// empties, and subscribers receive a TypeDisconnected event carrying
// the error. With Config.Reconnect.AutoReconnect set the session then
// redials on the policy's backoff schedule, running a full handshake
// and device list resynchronization on success.
package client
