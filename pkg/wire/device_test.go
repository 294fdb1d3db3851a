package wire

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Siege-Wizard/buttplug-go/pkg/version"
)

func TestDeviceMessagesShapes(t *testing.T) {
	tests := []struct {
		name string
		data string
		want DeviceMessages
	}{
		{
			name: "v0 name list",
			data: `["SingleMotorVibrateCmd", "StopDeviceCmd"]`,
			want: DeviceMessages{
				"SingleMotorVibrateCmd": {{}},
				"StopDeviceCmd":         {{}},
			},
		},
		{
			name: "v1 feature count",
			data: `{"VibrateCmd": {"FeatureCount": 2}, "StopDeviceCmd": {}}`,
			want: DeviceMessages{
				"VibrateCmd":    {{}, {}},
				"StopDeviceCmd": {{}},
			},
		},
		{
			name: "v2 step counts",
			data: `{"VibrateCmd": {"FeatureCount": 2, "StepCount": [20, 40]}}`,
			want: DeviceMessages{
				"VibrateCmd": {{StepCount: 20}, {StepCount: 40}},
			},
		},
		{
			name: "v3 attribute lists",
			data: `{
				"ScalarCmd": [
					{"FeatureDescriptor": "Clitoral Stimulator", "StepCount": 20, "ActuatorType": "Vibrate"},
					{"FeatureDescriptor": "Insertable Vibrator", "StepCount": 40, "ActuatorType": "Vibrate"}
				],
				"SensorReadCmd": [
					{"SensorType": "Battery", "SensorRange": [[0, 100]]}
				]
			}`,
			want: DeviceMessages{
				"ScalarCmd": {
					{FeatureDescriptor: "Clitoral Stimulator", StepCount: 20, ActuatorType: ActuatorVibrate},
					{FeatureDescriptor: "Insertable Vibrator", StepCount: 40, ActuatorType: ActuatorVibrate},
				},
				"SensorReadCmd": {
					{SensorType: SensorBattery, SensorRange: [][2]int32{{0, 100}}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got DeviceMessages
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DeviceMessages mismatch:\n got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestDeviceMessagesInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"scalar body", `42`},
		{"invalid name list", `[42]`},
		{"invalid attribute list", `{"ScalarCmd": [42]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dm DeviceMessages
			if err := json.Unmarshal([]byte(tt.data), &dm); err == nil {
				t.Errorf("Unmarshal(%s) succeeded, want error", tt.data)
			}
		})
	}
}

func TestDeviceListAcrossVersions(t *testing.T) {
	t.Run("v1 device list", func(t *testing.T) {
		frame := []byte(`[{"DeviceList": {"Id": 2, "Devices": [
			{"DeviceName": "TestDevice", "DeviceIndex": 0, "DeviceMessages": {"VibrateCmd": {"FeatureCount": 1}}}
		]}}]`)

		msgs, err := Decode(frame, version.V1)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		list, ok := msgs[0].(*DeviceList)
		if !ok {
			t.Fatalf("message is %T, want *DeviceList", msgs[0])
		}
		if len(list.Devices) != 1 {
			t.Fatalf("Devices has %d entries, want 1", len(list.Devices))
		}
		attrs := list.Devices[0].DeviceMessages["VibrateCmd"]
		if len(attrs) != 1 {
			t.Errorf("VibrateCmd features = %d, want 1", len(attrs))
		}
	})

	t.Run("v3 device added with display name", func(t *testing.T) {
		frame := []byte(`[{"DeviceAdded": {"Id": 0, "DeviceName": "Toy", "DeviceIndex": 1,
			"DeviceDisplayName": "Bedside Toy", "DeviceMessageTimingGap": 100,
			"DeviceMessages": {"ScalarCmd": [{"StepCount": 20, "ActuatorType": "Vibrate"}]}}}]`)

		msgs, err := Decode(frame, version.V3)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		added, ok := msgs[0].(*DeviceAdded)
		if !ok {
			t.Fatalf("message is %T, want *DeviceAdded", msgs[0])
		}
		if added.DeviceDisplayName != "Bedside Toy" {
			t.Errorf("DeviceDisplayName = %q, want Bedside Toy", added.DeviceDisplayName)
		}
		if added.DeviceMessageTimingGap != 100 {
			t.Errorf("DeviceMessageTimingGap = %d, want 100", added.DeviceMessageTimingGap)
		}
		if added.DeviceIndex != 1 {
			t.Errorf("DeviceIndex = %d, want 1", added.DeviceIndex)
		}
	})
}
