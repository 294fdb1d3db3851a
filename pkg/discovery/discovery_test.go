package discovery_test

import (
	"testing"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/discovery"
)

func TestServerCandidateURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate discovery.ServerCandidate
		want      string
	}{
		{
			name: "prefers IPv4 address",
			candidate: discovery.ServerCandidate{
				Host:      "desktop.local.",
				Port:      12345,
				Addresses: []string{"fe80::1", "192.168.1.20"},
			},
			want: "ws://192.168.1.20:12345",
		},
		{
			name: "brackets IPv6 address",
			candidate: discovery.ServerCandidate{
				Host:      "desktop.local.",
				Port:      12345,
				Addresses: []string{"fe80::1"},
			},
			want: "ws://[fe80::1]:12345",
		},
		{
			name: "falls back to hostname without trailing dot",
			candidate: discovery.ServerCandidate{
				Host: "desktop.local.",
				Port: 12345,
			},
			want: "ws://desktop.local:12345",
		},
		{
			name: "zero port uses default",
			candidate: discovery.ServerCandidate{
				Host:      "desktop.local.",
				Addresses: []string{"10.0.0.5"},
			},
			want: "ws://10.0.0.5:12345",
		},
		{
			name: "non-default port",
			candidate: discovery.ServerCandidate{
				Addresses: []string{"10.0.0.5"},
				Port:      8080,
			},
			want: "ws://10.0.0.5:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestServerCandidateURLs(t *testing.T) {
	c := discovery.ServerCandidate{
		Host:      "desktop.local.",
		Port:      12345,
		Addresses: []string{"192.168.1.20", "fe80::1"},
	}

	got := c.URLs()
	want := []string{
		"ws://192.168.1.20:12345",
		"ws://[fe80::1]:12345",
		"ws://desktop.local:12345",
	}

	if len(got) != len(want) {
		t.Fatalf("URLs() returned %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("URLs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestServerCandidateURLsNoHost(t *testing.T) {
	c := discovery.ServerCandidate{
		Port:      12345,
		Addresses: []string{"10.0.0.5"},
	}

	got := c.URLs()
	if len(got) != 1 {
		t.Fatalf("URLs() returned %d entries, want 1: %v", len(got), got)
	}
	if got[0] != "ws://10.0.0.5:12345" {
		t.Errorf("URLs()[0] = %q", got[0])
	}
}

func TestFilterByInstance(t *testing.T) {
	filter := discovery.FilterByInstance("intiface_engine")

	match := &discovery.ServerCandidate{InstanceName: "intiface_engine_4fae70b1"}
	if !filter(match) {
		t.Error("expected prefix match")
	}

	other := &discovery.ServerCandidate{InstanceName: "some-other-service"}
	if filter(other) {
		t.Error("unexpected match for foreign instance")
	}
}

func TestFilterCandidates(t *testing.T) {
	in := make(chan *discovery.ServerCandidate, 3)
	in <- &discovery.ServerCandidate{InstanceName: "intiface_engine_1"}
	in <- &discovery.ServerCandidate{InstanceName: "printer"}
	in <- &discovery.ServerCandidate{InstanceName: "intiface_engine_2"}
	close(in)

	out := discovery.FilterCandidates(in, discovery.FilterByInstance("intiface_engine"))

	var names []string
	for c := range out {
		names = append(names, c.InstanceName)
	}

	if len(names) != 2 {
		t.Fatalf("filtered %d candidates, want 2: %v", len(names), names)
	}
	if names[0] != "intiface_engine_1" || names[1] != "intiface_engine_2" {
		t.Errorf("unexpected filtered order: %v", names)
	}
}

func TestDefaultBrowserConfig(t *testing.T) {
	config := discovery.DefaultBrowserConfig()
	if config.BrowseTimeout != 10*time.Second {
		t.Errorf("BrowseTimeout = %v, want 10s", config.BrowseTimeout)
	}
	if config.Interface != "" {
		t.Errorf("Interface = %q, want all interfaces", config.Interface)
	}
}

func TestNewMDNSBrowser(t *testing.T) {
	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		t.Fatalf("Failed to create browser: %v", err)
	}
	defer browser.Stop()
}

func TestNewMDNSBrowserZeroTimeout(t *testing.T) {
	browser, err := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
	if err != nil {
		t.Fatalf("Failed to create browser: %v", err)
	}
	defer browser.Stop()
}
