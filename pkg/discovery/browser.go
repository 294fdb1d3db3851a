package discovery

import (
	"context"
	"strings"
	"time"
)

// Browser provides mDNS browsing for device servers.
type Browser interface {
	// Browse searches for servers on the local network.
	// The channel is closed when the context is cancelled or browsing completes.
	Browse(ctx context.Context) (<-chan *ServerCandidate, error)

	// FindFirst returns the first server found, or ErrNotFound when browsing
	// ends without a result.
	FindFirst(ctx context.Context) (*ServerCandidate, error)

	// Stop stops all active browsing operations.
	Stop()
}

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// BrowseTimeout bounds FindFirst. Default: 10 seconds.
	BrowseTimeout time.Duration

	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		BrowseTimeout: BrowseTimeout,
		Interface:     "",
	}
}

// FilterFunc is a function that filters browse results.
type FilterFunc func(*ServerCandidate) bool

// FilterByInstance returns a filter that matches candidates whose instance
// name begins with the given prefix.
func FilterByInstance(prefix string) FilterFunc {
	return func(c *ServerCandidate) bool {
		return strings.HasPrefix(c.InstanceName, prefix)
	}
}

// FilterCandidates filters a channel of server candidates.
func FilterCandidates(in <-chan *ServerCandidate, filter FilterFunc) <-chan *ServerCandidate {
	out := make(chan *ServerCandidate)
	go func() {
		defer close(out)
		for c := range in {
			if filter(c) {
				out <- c
			}
		}
	}()
	return out
}
