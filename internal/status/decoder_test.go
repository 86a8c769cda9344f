package status

import (
	"reflect"
	"testing"

	"stationwatch/internal/models"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	type testCase struct {
		name       string
		raw        uint32
		deviceType string
		wantClass  models.Classification
		wantLabels []string
	}

	cases := []testCase{
		{
			name:       "clean status is ok",
			raw:        0,
			deviceType: "ST",
			wantClass:  models.ClassOK,
		},
		{
			name:       "single error flag names the sensor",
			raw:        0x10, // air temperature failed
			deviceType: "ST",
			wantClass:  models.ClassFailure,
			wantLabels: []string{"air_temperature"},
		},
		{
			name:       "warning-only flags classify warning with no named failures",
			raw:        0x2, // lightning noise
			deviceType: "ST",
			wantClass:  models.ClassWarning,
		},
		{
			name:       "error beats warning regardless of bit order",
			raw:        0x2 | 0x40, // lightning noise + wind failed
			deviceType: "ST",
			wantClass:  models.ClassFailure,
			wantLabels: []string{"wind"},
		},
		{
			name:       "multiple errors all named",
			raw:        0x8 | 0x80, // pressure + precip failed
			deviceType: "ST",
			wantClass:  models.ClassFailure,
			wantLabels: []string{"pressure", "precip"},
		},
		{
			name:       "bits outside the sky table are ignored",
			raw:        0x8 | 0x10, // pressure/temperature bits mean nothing on SK
			deviceType: "SK",
			wantClass:  models.ClassOK,
		},
		{
			name:       "unknown device type decodes to ok",
			raw:        0xFFFFFFFF,
			deviceType: "XX",
			wantClass:  models.ClassOK,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			class, failures := Classify(tc.raw, tc.deviceType)
			if class != tc.wantClass {
				t.Fatalf("classification: want %v, got %v", tc.wantClass, class)
			}

			var labels []string
			for _, f := range failures {
				labels = append(labels, f.SensorLabel)
				if f.Reason == "" {
					t.Errorf("failure %q has empty reason", f.SensorLabel)
				}
			}
			if !reflect.DeepEqual(labels, tc.wantLabels) {
				t.Errorf("failure labels: want %v, got %v", tc.wantLabels, labels)
			}

			// pure function: a second call must agree with the first
			class2, failures2 := Classify(tc.raw, tc.deviceType)
			if class2 != class || !reflect.DeepEqual(failures2, failures) {
				t.Errorf("Classify is not pure: first (%v,%v), second (%v,%v)", class, failures, class2, failures2)
			}
		})
	}
}

func TestClassify_WarningNeverPopulatesFailures(t *testing.T) {
	t.Parallel()

	// every warning-only combination for the ST lightning group
	for _, raw := range []uint32{0x2, 0x4, 0x2 | 0x4} {
		class, failures := Classify(raw, "ST")
		if class != models.ClassWarning {
			t.Errorf("raw %#x: want warning, got %v", raw, class)
		}
		if len(failures) != 0 {
			t.Errorf("raw %#x: warning classification must carry no failures, got %v", raw, failures)
		}
	}
}

func TestDeviceType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ST-00012345": "ST",
		"AR-1":        "AR",
		"SK-0-1":      "SK",
		"NODASH":      "NODASH",
		"":            "",
	}
	for serial, want := range cases {
		if got := DeviceType(serial); got != want {
			t.Errorf("DeviceType(%q): want %q, got %q", serial, want, got)
		}
	}
}

func TestIsHeartbeat(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"HB-00056789": true,
		"ST-HB-1":     true,
		"ST-00012345": false,
		"":            false,
	}
	for serial, want := range cases {
		if got := IsHeartbeat(serial); got != want {
			t.Errorf("IsHeartbeat(%q): want %v, got %v", serial, want, got)
		}
	}
}
