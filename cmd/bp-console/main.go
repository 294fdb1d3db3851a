// Command bp-console is an interactive client for buttplug servers.
//
// This command demonstrates a complete client session with:
//   - CLI argument parsing
//   - Configuration file support
//   - mDNS server discovery
//   - Interactive device control
//   - Protocol trace capture
//
// Usage:
//
//	bp-console [flags]
//
// Flags:
//
//	-server string      Server websocket address (default "ws://127.0.0.1:12345")
//	-config string      Configuration file path
//	-name string        Client name announced to the server (default "bp-console")
//	-discover           Discover a server via mDNS instead of using -server
//	-trace string       Write a protocol trace to this file
//	-timeout duration   Request timeout (0 = library default)
//	-no-reconnect       Disable automatic reconnection
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Connect to a local Intiface Central
//	bp-console
//
//	# Discover the server on the local network and capture a trace
//	bp-console -discover -trace session.bplog
//
//	# Use a config file, overriding its log level
//	bp-console -config console.yaml -log-level debug
//
// Interactive Commands:
//
//	connect [url]  - Connect to the server
//	devices        - List known devices
//	scan start     - Start device scanning
//	vibrate 0 0.5  - Drive device 0 at half speed
//	stop all       - Stop every device
//	quit           - Exit the console
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Siege-Wizard/buttplug-go/cmd/bp-console/interactive"
	"github.com/Siege-Wizard/buttplug-go/pkg/client"
	"github.com/Siege-Wizard/buttplug-go/pkg/connection"
	"github.com/Siege-Wizard/buttplug-go/pkg/discovery"
	"github.com/Siege-Wizard/buttplug-go/pkg/log"
	"github.com/Siege-Wizard/buttplug-go/pkg/transport"
)

// shutdownTimeout bounds the final disconnect on exit.
const shutdownTimeout = 5 * time.Second

// Config holds the console configuration.
// It implements interactive.ConsoleConfig.
type Config struct {
	Server      string
	ConfigFile  string
	Name        string
	Discover    bool
	Trace       string
	Timeout     time.Duration
	NoReconnect bool
	LogLevel    string
}

// ServerURL implements interactive.ConsoleConfig.
func (c *Config) ServerURL() string {
	return c.Server
}

// FileConfig is the YAML configuration file structure. Timeout is a
// duration string ("30s"); NoReconnect is a pointer so an absent key is
// distinguishable from an explicit false.
type FileConfig struct {
	Server      string `yaml:"server"`
	Name        string `yaml:"name"`
	Trace       string `yaml:"trace"`
	Timeout     string `yaml:"timeout"`
	NoReconnect *bool  `yaml:"no_reconnect"`
	LogLevel    string `yaml:"log_level"`
}

var (
	config Config
	logger *slog.Logger
	trace  *log.FileLogger
)

func init() {
	flag.StringVar(&config.Server, "server", "ws://127.0.0.1:12345", "Server websocket address")
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path")
	flag.StringVar(&config.Name, "name", "bp-console", "Client name announced to the server")
	flag.BoolVar(&config.Discover, "discover", false, "Discover a server via mDNS instead of using -server")
	flag.StringVar(&config.Trace, "trace", "", "Write a protocol trace to this file")
	flag.DurationVar(&config.Timeout, "timeout", 0, "Request timeout (0 = library default)")
	flag.BoolVar(&config.NoReconnect, "no-reconnect", false, "Disable automatic reconnection")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	if config.ConfigFile != "" {
		if err := applyConfigFile(config.ConfigFile); err != nil {
			fatalf("Invalid configuration: %v", err)
		}
	}

	level, err := parseLogLevel(config.LogLevel)
	if err != nil {
		fatalf("Invalid configuration: %v", err)
	}

	if config.Trace != "" {
		trace, err = log.NewFileLogger(config.Trace)
		if err != nil {
			fatalf("Failed to open trace file: %v", err)
		}
	}

	console, err := interactive.New(newClient, &config)
	if err != nil {
		fatalf("Failed to create console: %v", err)
	}

	// Route log output through readline to avoid interfering with input.
	logger = slog.New(slog.NewTextHandler(console.Stdout(), &slog.HandlerOptions{Level: level}))

	if config.Discover {
		if err := discoverServer(console.Stdout()); err != nil {
			fatalf("Discovery failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go console.Run(ctx, cancel)

	// Wait for shutdown signal or context cancellation
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Fprintf(console.Stdout(), "\nReceived signal: %v\n", sig)
		cancel()
	case <-ctx.Done():
		// Context was cancelled (e.g., by the quit command)
	}

	console.Shutdown(shutdownTimeout)

	if trace != nil {
		_ = trace.Close()
		fmt.Printf("Captured %d trace event(s) to %s\n", trace.Count(), trace.Path())
	}
}

// newClient builds a client for the given server address using the
// command-line configuration. It is handed to the interactive console,
// which calls it on connect.
func newClient(serverURL string) (*client.Client, error) {
	connector := transport.NewWebsocket(transport.WebsocketConfig{URL: serverURL})

	cc := client.DefaultConfig()
	cc.ClientName = config.Name
	cc.Logger = logger
	if trace != nil {
		cc.Trace = trace
	}
	if config.Timeout > 0 {
		cc.RequestTimeout = config.Timeout
	}
	if config.NoReconnect {
		cc.Reconnect = connection.Policy{}
	}

	return client.NewClient(connector, cc)
}

// discoverServer browses for a server via mDNS and stores the first
// candidate's address as the connect target.
func discoverServer(w io.Writer) error {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		return err
	}
	defer browser.Stop()

	fmt.Fprintln(w, "Browsing for servers...")
	cand, err := browser.FindFirst(context.Background())
	if err != nil {
		return fmt.Errorf("%w (pass -server to connect directly)", err)
	}

	fmt.Fprintf(w, "Discovered %q at %s\n", cand.InstanceName, cand.URL())
	config.Server = cand.URL()
	return nil
}

// applyConfigFile merges a YAML configuration file into the settings.
// Flags given explicitly on the command line win over file values.
func applyConfigFile(path string) error {
	fc, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fc.Server != "" && !set["server"] {
		config.Server = fc.Server
	}
	if fc.Name != "" && !set["name"] {
		config.Name = fc.Name
	}
	if fc.Trace != "" && !set["trace"] {
		config.Trace = fc.Trace
	}
	if fc.Timeout != "" && !set["timeout"] {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in config file: %w", err)
		}
		config.Timeout = d
	}
	if fc.NoReconnect != nil && !set["no-reconnect"] {
		config.NoReconnect = *fc.NoReconnect
	}
	if fc.LogLevel != "" && !set["log-level"] {
		config.LogLevel = fc.LogLevel
	}
	return nil
}

// loadConfigFile reads and parses a YAML configuration file.
func loadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

// parseLogLevel maps a level name to a slog level.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s (use: debug, info, warn, error)", s)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
