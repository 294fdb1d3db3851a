// Package interactive provides the interactive command-line interface
// for the buttplug console.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chzyer/readline"

	"github.com/Siege-Wizard/buttplug-go/pkg/client"
	"github.com/Siege-Wizard/buttplug-go/pkg/device"
	"github.com/Siege-Wizard/buttplug-go/pkg/discovery"
	"github.com/Siege-Wizard/buttplug-go/pkg/events"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// browseWindow bounds the interactive discover command. Shorter than the
// package default so the prompt comes back quickly.
const browseWindow = 5 * time.Second

// ClientFactory builds a client for a server address. The console calls
// it on the first connect and again whenever the target address changes.
type ClientFactory func(serverURL string) (*client.Client, error)

// ConsoleConfig provides configuration information to the interactive
// console. This interface allows the interactive layer to access
// settings without depending on the main package's config structure.
type ConsoleConfig interface {
	// ServerURL returns the configured server address.
	ServerURL() string
}

// Console handles interactive mode for bp-console.
type Console struct {
	factory ClientFactory
	config  ConsoleConfig
	rl      *readline.Instance

	client *client.Client
	sub    events.Handle
	server string

	// watch controls live event display. Read from the dispatch
	// goroutine, toggled from the command loop.
	watch atomic.Bool
}

// New creates a new interactive console handler.
func New(factory ClientFactory, cfg ConsoleConfig) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "buttplug> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{
		factory: factory,
		config:  cfg,
		rl:      rl,
	}
	c.watch.Store(true)

	return c, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Shutdown disconnects the client if a session is up. Called after the
// command loop has exited.
func (c *Console) Shutdown(timeout time.Duration) {
	if c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = c.client.Disconnect(ctx)
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "connect", "c":
			c.cmdConnect(ctx, args)

		case "disconnect":
			c.cmdDisconnect(ctx)

		case "discover":
			c.cmdDiscover(ctx)

		case "status", "st":
			c.cmdStatus()

		case "devices", "ls":
			c.cmdDevices()

		case "device", "d":
			c.cmdDevice(args)

		case "scan":
			c.cmdScan(ctx, args)

		case "refresh":
			c.cmdRefresh(ctx)

		case "vibrate", "v":
			c.cmdVibrate(ctx, args)

		case "rotate":
			c.cmdRotate(ctx, args)

		case "linear":
			c.cmdLinear(ctx, args)

		case "stop":
			c.cmdStop(ctx, args)

		case "sensor":
			c.cmdSensor(ctx, args)

		case "log":
			c.cmdLog(ctx, args)

		case "watch":
			c.cmdWatch(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Buttplug Console Commands:
  Connection:
    connect [url]       - Connect to the server (optionally switching address)
    disconnect          - Disconnect from the server
    discover            - Browse for servers via mDNS
    status              - Show session status

  Devices:
    devices             - List known devices
    device <idx>        - Show one device's capabilities
    scan start|stop     - Control device scanning
    refresh             - Re-request the device list

  Control:
    vibrate <idx> <level> [feature]         - Drive an actuator (level 0-1)
    rotate <idx> <speed> [cw|ccw] [feature] - Drive a rotator (speed 0-1)
    linear <idx> <ms> <position> [feature]  - Move a linear actuator
    stop <idx>|all                          - Stop one device or all devices

  Sensors:
    sensor read <idx> [feature]  - Read a sensor once
    sensor sub <idx> [feature]   - Subscribe to a sensor
    sensor unsub <idx> [feature] - Unsubscribe from a sensor

  General:
    log <level>         - Request server log forwarding (off/error/warn/info/debug/trace)
    watch on|off        - Toggle live event display
    help                - Show this help
    quit                - Exit`)
}

// cmdConnect handles the connect command. A fresh client is built when
// no client exists yet or when the target address changes; otherwise the
// existing client reconnects to its server.
func (c *Console) cmdConnect(ctx context.Context, args []string) {
	if c.client != nil && c.client.IsConnected() {
		fmt.Fprintln(c.rl.Stdout(), "Already connected (use 'disconnect' first)")
		return
	}

	target := c.server
	if target == "" {
		target = c.config.ServerURL()
	}
	if len(args) > 0 {
		target = args[0]
	}
	if target == "" {
		fmt.Fprintln(c.rl.Stdout(), "No server address configured (use 'connect <url>' or 'discover')")
		return
	}

	if c.client == nil || target != c.server {
		if c.client != nil {
			// Stops a reconnection loop left over from the old target.
			_ = c.client.Disconnect(ctx)
		}

		cl, err := c.factory(target)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Failed to create client: %v\n", err)
			return
		}

		c.client = cl
		c.server = target
		c.sub = cl.Subscribe(c.handleEvent)
		cl.OnHandlerPanic(func(ev events.Event, recovered any) {
			fmt.Fprintf(c.rl.Stdout(), "\nEvent handler panic on %s: %v\n", ev.Type, recovered)
			c.rl.Refresh()
		})
	}

	fmt.Fprintf(c.rl.Stdout(), "Connecting to %s...\n", target)
	if err := c.client.Connect(ctx); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Connect failed: %v\n", err)
		return
	}

	info := c.client.Info()
	fmt.Fprintf(c.rl.Stdout(), "Connected to %q (message version %d)\n", info.ServerName, info.MessageVersion)
	if n := len(c.client.Devices()); n > 0 {
		fmt.Fprintf(c.rl.Stdout(), "%d device(s) known (use 'devices' to list)\n", n)
	}
}

// cmdDisconnect handles the disconnect command.
func (c *Console) cmdDisconnect(ctx context.Context) {
	if c.client == nil {
		fmt.Fprintln(c.rl.Stdout(), "Not connected")
		return
	}

	if err := c.client.Disconnect(ctx); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Disconnect failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "Disconnected")
}

// cmdDiscover browses for servers via mDNS and prints what it finds.
func (c *Console) cmdDiscover(ctx context.Context) {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to create browser: %v\n", err)
		return
	}
	defer browser.Stop()

	browseCtx, cancel := context.WithTimeout(ctx, browseWindow)
	defer cancel()

	candidates, err := browser.Browse(browseCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "Browsing for servers (%s)...\n", browseWindow)

	found := 0
	for cand := range candidates {
		found++
		fmt.Fprintf(c.rl.Stdout(), "  %s - %s\n", cand.InstanceName, cand.URL())
	}

	if found == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No servers found")
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%d server(s) found (use 'connect <url>' to connect)\n", found)
}

// cmdStatus shows the session status.
func (c *Console) cmdStatus() {
	fmt.Fprintln(c.rl.Stdout(), "\nSession Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")

	if c.client == nil {
		fmt.Fprintln(c.rl.Stdout(), "  State:           DISCONNECTED")
		fmt.Fprintf(c.rl.Stdout(), "  Server:          %s\n", c.config.ServerURL())
		fmt.Fprintln(c.rl.Stdout())
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "  State:           %s\n", c.client.State())
	fmt.Fprintf(c.rl.Stdout(), "  Server:          %s\n", c.server)

	if c.client.IsConnected() {
		info := c.client.Info()
		fmt.Fprintf(c.rl.Stdout(), "  Server Name:     %s\n", info.ServerName)
		if info.ServerVersion != "" {
			fmt.Fprintf(c.rl.Stdout(), "  Server Version:  %s\n", info.ServerVersion)
		}
		fmt.Fprintf(c.rl.Stdout(), "  Message Version: %d\n", info.MessageVersion)
		if info.MaxPingTime > 0 {
			fmt.Fprintf(c.rl.Stdout(), "  Max Ping Time:   %s\n", info.MaxPingTime)
		}
	}

	fmt.Fprintf(c.rl.Stdout(), "  Devices:         %d\n", len(c.client.Devices()))

	scanning := "no"
	if c.client.IsScanning() {
		scanning = "yes"
	}
	fmt.Fprintf(c.rl.Stdout(), "  Scanning:        %s\n", scanning)

	watch := "off"
	if c.watch.Load() {
		watch = "on"
	}
	fmt.Fprintf(c.rl.Stdout(), "  Watch:           %s\n", watch)
	fmt.Fprintln(c.rl.Stdout())
}

// cmdDevices lists the known devices.
func (c *Console) cmdDevices() {
	if !c.requireConnected() {
		return
	}

	devices := c.client.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No devices known (try 'scan start')")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nDevices (%d):\n", len(devices))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, d := range devices {
		fmt.Fprintf(c.rl.Stdout(), "  #%-3d %s\n", d.Index(), d.DisplayName())
		fmt.Fprintf(c.rl.Stdout(), "       actuators: %d  rotators: %d  linears: %d  sensors: %d\n",
			len(d.Actuators()), len(d.Rotators()), len(d.Linears()), len(d.Sensors()))
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdDevice shows one device's capabilities.
func (c *Console) cmdDevice(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: device <idx>")
		return
	}
	if !c.requireConnected() {
		return
	}

	idx, ok := c.parseIndex(args[0])
	if !ok {
		return
	}

	d, err := c.client.Device(idx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nDevice #%d: %s\n", d.Index(), d.DisplayName())
	if d.DisplayName() != d.Name() {
		fmt.Fprintf(c.rl.Stdout(), "  (reported as %q)\n", d.Name())
	}
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")

	c.printCapabilities("Actuators", d.Actuators())
	c.printCapabilities("Rotators", d.Rotators())
	c.printCapabilities("Linears", d.Linears())
	c.printCapabilities("Sensors", d.Sensors())
	c.printCapabilities("Subscribable", d.Subscribables())

	stoppable := "no"
	if d.Stoppable() {
		stoppable = "yes"
	}
	fmt.Fprintf(c.rl.Stdout(), "  Stoppable: %s\n\n", stoppable)
}

// printCapabilities prints one capability family, skipping empty ones.
func (c *Console) printCapabilities(label string, caps []device.Capability) {
	if len(caps) == 0 {
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "  %s:\n", label)
	for _, cp := range caps {
		detail := ""
		switch {
		case cp.SensorType != "":
			detail = string(cp.SensorType)
			for _, r := range cp.SensorRange {
				detail += fmt.Sprintf(" [%d,%d]", r[0], r[1])
			}
		case cp.ActuatorType != "":
			detail = string(cp.ActuatorType)
			if cp.StepCount > 0 {
				detail += fmt.Sprintf(" (%d steps)", cp.StepCount)
			}
		}
		if cp.Descriptor != "" {
			detail += " - " + cp.Descriptor
		}
		fmt.Fprintf(c.rl.Stdout(), "    [%d] %s\n", cp.FeatureIndex, detail)
	}
}

// cmdScan handles the scan command.
func (c *Console) cmdScan(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: scan start|stop")
		return
	}
	if !c.requireConnected() {
		return
	}

	switch strings.ToLower(args[0]) {
	case "start":
		if err := c.client.StartScanning(ctx); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Failed to start scanning: %v\n", err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), "Scanning started")

	case "stop":
		if err := c.client.StopScanning(ctx); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Failed to stop scanning: %v\n", err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), "Scanning stopped")

	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: scan start|stop")
	}
}

// cmdRefresh re-requests the device list from the server.
func (c *Console) cmdRefresh(ctx context.Context) {
	if !c.requireConnected() {
		return
	}

	devices, err := c.client.RequestDeviceList(ctx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to refresh device list: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Device list refreshed (%d device(s))\n", len(devices))
}

// cmdVibrate drives an actuator at a level between 0 and 1.
func (c *Console) cmdVibrate(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: vibrate <idx> <level> [feature]")
		fmt.Fprintln(c.rl.Stdout(), "  Example: vibrate 0 0.5")
		return
	}
	if !c.requireConnected() {
		return
	}

	idx, ok := c.parseIndex(args[0])
	if !ok {
		return
	}
	level, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid level: %v\n", err)
		return
	}
	feature := c.parseFeature(args, 2)

	value, ok := c.toSteps(idx, device.CapabilityActuator, feature, level)
	if !ok {
		return
	}
	if err := c.client.SendCommand(ctx, idx, feature, value); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Command failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Device #%d feature %d set to %.2f\n", idx, feature, level)
}

// cmdRotate drives a rotator at a speed between 0 and 1.
func (c *Console) cmdRotate(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: rotate <idx> <speed> [cw|ccw] [feature]")
		fmt.Fprintln(c.rl.Stdout(), "  Example: rotate 0 0.75 ccw")
		return
	}
	if !c.requireConnected() {
		return
	}

	idx, ok := c.parseIndex(args[0])
	if !ok {
		return
	}
	speed, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid speed: %v\n", err)
		return
	}

	clockwise := true
	rest := args[2:]
	if len(rest) > 0 {
		switch strings.ToLower(rest[0]) {
		case "cw":
			rest = rest[1:]
		case "ccw":
			clockwise = false
			rest = rest[1:]
		}
	}

	feature := c.parseFeature(rest, 0)

	value, ok := c.toSteps(idx, device.CapabilityRotator, feature, speed)
	if !ok {
		return
	}
	if err := c.client.SendRotate(ctx, idx, feature, value, clockwise); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Command failed: %v\n", err)
		return
	}

	dir := "clockwise"
	if !clockwise {
		dir = "counter-clockwise"
	}
	fmt.Fprintf(c.rl.Stdout(), "Device #%d feature %d rotating %s at %.2f\n", idx, feature, dir, speed)
}

// cmdLinear moves a linear actuator to a position over a duration.
func (c *Console) cmdLinear(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: linear <idx> <duration-ms> <position> [feature]")
		fmt.Fprintln(c.rl.Stdout(), "  Example: linear 0 500 0.8")
		return
	}
	if !c.requireConnected() {
		return
	}

	idx, ok := c.parseIndex(args[0])
	if !ok {
		return
	}
	millis, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid duration: %v\n", err)
		return
	}
	position, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid position: %v\n", err)
		return
	}
	feature := c.parseFeature(args, 3)

	value, ok := c.toSteps(idx, device.CapabilityLinear, feature, position)
	if !ok {
		return
	}
	duration := time.Duration(millis) * time.Millisecond
	if err := c.client.SendLinear(ctx, idx, feature, duration, value); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Command failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Device #%d feature %d moving to %.2f over %s\n", idx, feature, position, duration)
}

// cmdStop stops one device or all of them.
func (c *Console) cmdStop(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: stop <idx>|all")
		return
	}
	if !c.requireConnected() {
		return
	}

	if strings.ToLower(args[0]) == "all" {
		if err := c.client.StopAllDevices(ctx); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Failed to stop devices: %v\n", err)
			return
		}
		fmt.Fprintln(c.rl.Stdout(), "All devices stopped")
		return
	}

	idx, ok := c.parseIndex(args[0])
	if !ok {
		return
	}
	if err := c.client.StopDevice(ctx, idx); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Failed to stop device: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Device #%d stopped\n", idx)
}

// cmdSensor handles the sensor subcommands.
func (c *Console) cmdSensor(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: sensor read|sub|unsub <idx> [feature]")
		return
	}
	if !c.requireConnected() {
		return
	}

	idx, ok := c.parseIndex(args[1])
	if !ok {
		return
	}
	feature := c.parseFeature(args, 2)

	switch strings.ToLower(args[0]) {
	case "read", "r":
		data, err := c.client.ReadSensor(ctx, idx, feature)
		if err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Read failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Device #%d sensor %d: %s\n", idx, feature, formatReading(data))

	case "sub", "subscribe":
		if err := c.client.SubscribeSensor(ctx, idx, feature); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Subscribe failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Subscribed to device #%d sensor %d\n", idx, feature)

	case "unsub", "unsubscribe":
		if err := c.client.UnsubscribeSensor(ctx, idx, feature); err != nil {
			fmt.Fprintf(c.rl.Stdout(), "Unsubscribe failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.rl.Stdout(), "Unsubscribed from device #%d sensor %d\n", idx, feature)

	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: sensor read|sub|unsub <idx> [feature]")
	}
}

// cmdLog requests server log forwarding at a level.
func (c *Console) cmdLog(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: log off|fatal|error|warn|info|debug|trace")
		return
	}
	if !c.requireConnected() {
		return
	}

	level, err := parseServerLogLevel(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "%v\n", err)
		return
	}

	if err := c.client.RequestServerLog(ctx, level); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Request failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Server log forwarding set to %s\n", level)
}

// cmdWatch toggles live event display.
func (c *Console) cmdWatch(args []string) {
	if len(args) < 1 {
		state := "off"
		if c.watch.Load() {
			state = "on"
		}
		fmt.Fprintf(c.rl.Stdout(), "Watch is %s (use 'watch on|off')\n", state)
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		c.watch.Store(true)
		fmt.Fprintln(c.rl.Stdout(), "Watch enabled")
	case "off":
		c.watch.Store(false)
		fmt.Fprintln(c.rl.Stdout(), "Watch disabled")
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: watch on|off")
	}
}

// requireConnected prints a hint and returns false when no session is up.
func (c *Console) requireConnected() bool {
	if c.client == nil || !c.client.IsConnected() {
		fmt.Fprintln(c.rl.Stdout(), "Not connected (use 'connect')")
		return false
	}
	return true
}

// parseIndex parses a device index argument.
func (c *Console) parseIndex(s string) (uint32, bool) {
	idx, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid device index: %s\n", s)
		return 0, false
	}
	return uint32(idx), true
}

// toSteps maps a 0-1 level onto a capability's declared step range. The
// console speaks fractions; the client API speaks step units.
func (c *Console) toSteps(idx uint32, kind device.CapabilityKind, feature uint32, level float64) (float64, bool) {
	if level < 0 || level > 1 {
		fmt.Fprintf(c.rl.Stdout(), "Level %v outside [0, 1]\n", level)
		return 0, false
	}

	d, err := c.client.Device(idx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return 0, false
	}
	cp, err := d.Capability(kind, feature)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return 0, false
	}

	if cp.StepCount == 0 {
		return level, true
	}
	return level * float64(cp.StepCount), true
}

// parseFeature parses an optional feature index argument, defaulting to 0.
func (c *Console) parseFeature(args []string, pos int) uint32 {
	if len(args) <= pos {
		return 0
	}
	feature, err := strconv.ParseUint(args[pos], 10, 32)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid feature index %q, using 0\n", args[pos])
		return 0
	}
	return uint32(feature)
}

// parseServerLogLevel maps a console argument to a wire log level.
func parseServerLogLevel(s string) (wire.LogLevel, error) {
	switch strings.ToLower(s) {
	case "off":
		return wire.LogLevelOff, nil
	case "fatal":
		return wire.LogLevelFatal, nil
	case "error":
		return wire.LogLevelError, nil
	case "warn":
		return wire.LogLevelWarn, nil
	case "info":
		return wire.LogLevelInfo, nil
	case "debug":
		return wire.LogLevelDebug, nil
	case "trace":
		return wire.LogLevelTrace, nil
	default:
		return "", fmt.Errorf("unknown log level: %s (use: off, fatal, error, warn, info, debug, trace)", s)
	}
}

// formatReading renders a sensor reading vector.
func formatReading(data []int32) string {
	parts := make([]string, len(data))
	for i, v := range data {
		parts[i] = strconv.FormatInt(int64(v), 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// handleEvent displays server pushes while watch is enabled. It runs on
// the client's dispatch goroutine, so all output goes through the
// readline writer followed by a prompt refresh.
func (c *Console) handleEvent(ev events.Event) {
	// Connection loss is always shown, everything else honors watch.
	if ev.Type != events.TypeDisconnected && !c.watch.Load() {
		return
	}

	ts := time.Now().Format("15:04:05")

	switch ev.Type {
	case events.TypeDeviceAdded:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Device added: #%d %s\n", ts, ev.Device.Index(), ev.Device.DisplayName())

	case events.TypeDeviceRemoved:
		name := ""
		if ev.Device != nil {
			name = " " + ev.Device.DisplayName()
		}
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Device removed: #%d%s\n", ts, ev.DeviceIndex, name)

	case events.TypeDeviceList:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Device list replaced (%d device(s))\n", ts, len(ev.Devices))

	case events.TypeScanningFinished:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Scanning finished\n", ts)

	case events.TypeSensorReading:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Sensor #%d/%d %s: %s\n",
			ts, ev.DeviceIndex, ev.SensorIndex, ev.SensorType, formatReading(ev.Data))

	case events.TypeServerLog:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Server log [%s] %s\n", ts, ev.LogLevel, ev.LogMessage)

	case events.TypeServerError:
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Server error: %v\n", ts, ev.Err)

	case events.TypeDisconnected:
		if ev.Err != nil {
			fmt.Fprintf(c.rl.Stdout(), "\n[%s] Connection lost: %v\n", ts, ev.Err)
		} else {
			fmt.Fprintf(c.rl.Stdout(), "\n[%s] Disconnected\n", ts)
		}

	case events.TypeUnrecognized:
		kind := "unknown"
		if u, ok := ev.Message.(*wire.Unrecognized); ok && u.Name != "" {
			kind = u.Name
		}
		fmt.Fprintf(c.rl.Stdout(), "\n[%s] Unrecognized push: %s\n", ts, kind)
	}

	c.rl.Refresh()
}
