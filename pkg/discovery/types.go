package discovery

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceTypeServer is the DNS-SD service type advertised by
	// Intiface-compatible servers.
	ServiceTypeServer = "_intiface_engine._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default server websocket port.
	DefaultPort = 12345
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Discovery errors.
var (
	ErrNotFound = errors.New("no server found")
)

// ServerCandidate represents a server found via mDNS.
type ServerCandidate struct {
	// InstanceName is the mDNS instance name (e.g., "intiface_engine_4fae70b1").
	InstanceName string

	// Host is the advertised hostname (e.g., "desktop.local.").
	Host string

	// Port is the websocket port.
	Port uint16

	// Addresses contains resolved IP addresses, IPv4 before IPv6.
	Addresses []string

	// TXT contains the raw TXT records, if any were advertised.
	TXT []string
}

// URL returns a websocket URL for the candidate, preferring a resolved
// IPv4 address over an IPv6 address over the mDNS hostname.
func (c *ServerCandidate) URL() string {
	return wsURL(c.preferredHost(), c.port())
}

// URLs returns websocket URLs for every known address of the candidate,
// ending with the hostname form when a hostname is known.
func (c *ServerCandidate) URLs() []string {
	urls := make([]string, 0, len(c.Addresses)+1)
	for _, addr := range c.Addresses {
		urls = append(urls, wsURL(addr, c.port()))
	}
	if host := trimHost(c.Host); host != "" {
		urls = append(urls, wsURL(host, c.port()))
	}
	return urls
}

func (c *ServerCandidate) port() uint16 {
	if c.Port == 0 {
		return DefaultPort
	}
	return c.Port
}

// preferredHost picks the address to dial: the first IPv4 address,
// then the first IPv6 address, then the hostname.
func (c *ServerCandidate) preferredHost() string {
	first6 := ""
	for _, addr := range c.Addresses {
		ip := net.ParseIP(addr)
		if ip == nil {
			continue
		}
		if ip.To4() != nil {
			return addr
		}
		if first6 == "" {
			first6 = addr
		}
	}
	if first6 != "" {
		return first6
	}
	return trimHost(c.Host)
}

// wsURL builds a ws:// URL, bracketing IPv6 literals.
func wsURL(host string, port uint16) string {
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("ws://%s:%d", host, port)
}

// trimHost strips the trailing dot mDNS appends to hostnames.
func trimHost(host string) string {
	return strings.TrimSuffix(host, ".")
}
