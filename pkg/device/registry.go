package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// Registry is the session's view of the devices known to the server.
// It is written only from the session's inbound path and read from any
// goroutine.
type Registry struct {
	mu      sync.RWMutex
	devices map[uint32]*Device
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[uint32]*Device),
	}
}

// ApplyDeviceList replaces the whole device set with the given devices.
// Entries absent from the list are dropped, never merged: the server is the
// sole source of truth for device identity.
func (r *Registry) ApplyDeviceList(devices []wire.Device) []*Device {
	parsed := make(map[uint32]*Device, len(devices))
	for _, wd := range devices {
		parsed[wd.DeviceIndex] = FromWire(wd)
	}

	r.mu.Lock()
	r.devices = parsed
	r.mu.Unlock()

	return sorted(parsed)
}

// ApplyDeviceAdded inserts a device, replacing any existing entry with the
// same index. A re-announced index carries fresh capabilities; the stale
// entry must not survive.
func (r *Registry) ApplyDeviceAdded(wd wire.Device) *Device {
	d := FromWire(wd)

	r.mu.Lock()
	r.devices[d.index] = d
	r.mu.Unlock()

	return d
}

// ApplyDeviceRemoved deletes the device at index and returns it. Removing
// an absent index is a no-op, not an error.
func (r *Registry) ApplyDeviceRemoved(index uint32) (*Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.devices[index]
	if !ok {
		return nil, false
	}
	delete(r.devices, index)
	return d, true
}

// Clear drops every device. Called on disconnect.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.devices = make(map[uint32]*Device)
	r.mu.Unlock()
}

// Get returns the device at index.
func (r *Registry) Get(index uint32) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[index]
	if !ok {
		return nil, fmt.Errorf("%w: index %d", ErrDeviceNotFound, index)
	}
	return d, nil
}

// Devices returns all known devices in index order.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sorted(r.devices)
}

// Len returns the number of known devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

func sorted(m map[uint32]*Device) []*Device {
	out := make([]*Device, 0, len(m))
	for _, d := range m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}
