package client

import (
	"context"
	"time"

	"github.com/Siege-Wizard/buttplug-go/pkg/device"
	"github.com/Siege-Wizard/buttplug-go/pkg/wire"
)

// StartScanning asks the server to start scanning for devices. Results
// arrive as TypeDeviceAdded events.
func (c *Client) StartScanning(ctx context.Context) error {
	_, err := c.request(ctx, func(id uint32) wire.Message {
		return &wire.StartScanning{Base: wire.Base{ID: id}}
	}, wire.KindOk)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.scanning = true
	c.mu.Unlock()
	c.traceScanning(true, "requested")
	return nil
}

// StopScanning asks the server to stop scanning.
func (c *Client) StopScanning(ctx context.Context) error {
	_, err := c.request(ctx, func(id uint32) wire.Message {
		return &wire.StopScanning{Base: wire.Base{ID: id}}
	}, wire.KindOk)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.scanning = false
	c.mu.Unlock()
	c.traceScanning(false, "requested")
	return nil
}

// RequestDeviceList fetches the full device set from the server and
// replaces the registry contents with it.
func (c *Client) RequestDeviceList(ctx context.Context) ([]*device.Device, error) {
	reply, err := c.request(ctx, func(id uint32) wire.Message {
		return &wire.RequestDeviceList{Base: wire.Base{ID: id}}
	}, wire.KindDeviceList)
	if err != nil {
		return nil, err
	}
	return c.registry.ApplyDeviceList(reply.(*wire.DeviceList).Devices), nil
}

// Devices returns the known devices in index order. The set empties on
// disconnect.
func (c *Client) Devices() []*device.Device {
	return c.registry.Devices()
}

// Device returns the known device at index.
func (c *Client) Device(index uint32) (*device.Device, error) {
	return c.registry.Get(index)
}

// SendCommand drives one scalar actuator feature of a device to value,
// expressed in the feature's step units. The device and value are
// validated locally before anything reaches the transport.
func (c *Client) SendCommand(ctx context.Context, deviceIndex, feature uint32, value float64) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	cmd, err := d.ScalarCommand(feature, value, c.version())
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, cmd)
}

// SendRotate drives one rotating feature at value (step units) in the
// given direction.
func (c *Client) SendRotate(ctx context.Context, deviceIndex, feature uint32, value float64, clockwise bool) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	cmd, err := d.RotateCommand(feature, value, clockwise)
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, cmd)
}

// SendLinear moves one linear feature to value (step units) over the
// given duration.
func (c *Client) SendLinear(ctx context.Context, deviceIndex, feature uint32, duration time.Duration, value float64) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	cmd, err := d.LinearCommand(feature, uint32(duration.Milliseconds()), value)
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, cmd)
}

// StopDevice halts all activity on one device.
func (c *Client) StopDevice(ctx context.Context, deviceIndex uint32) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, d.StopCommand())
}

// StopAllDevices halts every device the server controls.
func (c *Client) StopAllDevices(ctx context.Context) error {
	_, err := c.request(ctx, func(id uint32) wire.Message {
		return &wire.StopAllDevices{Base: wire.Base{ID: id}}
	}, wire.KindOk)
	return err
}

// ReadSensor performs a one-shot read of one sensor feature and
// returns the raw reading values.
func (c *Client) ReadSensor(ctx context.Context, deviceIndex, feature uint32) ([]int32, error) {
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return nil, err
	}
	cmd, err := d.SensorReadCommand(feature)
	if err != nil {
		return nil, err
	}

	reply, err := c.request(ctx, func(id uint32) wire.Message {
		cmd.SetMessageID(id)
		return cmd
	}, wire.KindSensorReading)
	if err != nil {
		return nil, err
	}
	return reply.(*wire.SensorReading).Data, nil
}

// SubscribeSensor asks the server to push readings for one sensor
// feature as TypeSensorReading events.
func (c *Client) SubscribeSensor(ctx context.Context, deviceIndex, feature uint32) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	cmd, err := d.SensorSubscribeCommand(feature)
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, cmd)
}

// UnsubscribeSensor cancels a sensor subscription.
func (c *Client) UnsubscribeSensor(ctx context.Context, deviceIndex, feature uint32) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	d, err := c.registry.Get(deviceIndex)
	if err != nil {
		return err
	}
	cmd, err := d.SensorUnsubscribeCommand(feature)
	if err != nil {
		return err
	}
	return c.sendCmd(ctx, cmd)
}

// RequestServerLog asks the server to forward its internal log at the
// given level as TypeServerLog events. Removed from the protocol in
// v3; on a v3 session the request fails before anything is sent.
func (c *Client) RequestServerLog(ctx context.Context, level wire.LogLevel) error {
	_, err := c.request(ctx, func(id uint32) wire.Message {
		return &wire.RequestLog{Base: wire.Base{ID: id}, LogLevel: level}
	}, wire.KindOk)
	return err
}

// sendCmd sends a prebuilt device command and waits for the Ok.
func (c *Client) sendCmd(ctx context.Context, cmd wire.Message) error {
	_, err := c.request(ctx, func(id uint32) wire.Message {
		cmd.SetMessageID(id)
		return cmd
	}, wire.KindOk)
	return err
}
