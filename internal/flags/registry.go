// Package flags holds the static per-device-type tables that map bits of a
// device's sensor-status word to sensor labels. Loaded once, never mutated.
package flags

// Severity of a single status flag. Error-severity flags name a failed
// sensor; warning-severity flags degrade the device classification without
// surfacing a named failure.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

// FlagDefinition ties one bit of the status word to a human reason.
// Bit is always a single power of two.
type FlagDefinition struct {
	Bit      uint32
	Severity Severity
	Reason   string
}

// SensorDefinition groups the flags that watch one measurement channel.
type SensorDefinition struct {
	Label string
	Flags []FlagDefinition
}

// Sensor labels reported upstream and used in alerts and metrics.
const (
	SensorLightning        = "lightning"
	SensorPressure         = "pressure"
	SensorAirTemperature   = "air_temperature"
	SensorRelativeHumidity = "relative_humidity"
	SensorWind             = "wind"
	SensorPrecip           = "precip"
	SensorLightUV          = "light_uv"
	SensorPower            = "power"
)

// Status word bits as documented for the station firmware.
const (
	bitLightningFailed    = 0x00000001
	bitLightningNoise     = 0x00000002
	bitLightningDisturber = 0x00000004
	bitPressureFailed     = 0x00000008
	bitTemperatureFailed  = 0x00000010
	bitHumidityFailed     = 0x00000020
	bitWindFailed         = 0x00000040
	bitPrecipFailed       = 0x00000080
	bitLightUVFailed      = 0x00000100
	bitBoosterDepleted    = 0x00008000
	bitBoosterPortOff     = 0x00010000
)

func lightningSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorLightning,
		Flags: []FlagDefinition{
			{Bit: bitLightningFailed, Severity: SeverityError, Reason: "lightning sensor failed"},
			{Bit: bitLightningNoise, Severity: SeverityWarning, Reason: "lightning noise"},
			{Bit: bitLightningDisturber, Severity: SeverityWarning, Reason: "lightning disturber"},
		},
	}
}

func pressureSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorPressure,
		Flags: []FlagDefinition{
			{Bit: bitPressureFailed, Severity: SeverityError, Reason: "pressure sensor failed"},
		},
	}
}

func temperatureSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorAirTemperature,
		Flags: []FlagDefinition{
			{Bit: bitTemperatureFailed, Severity: SeverityError, Reason: "air temperature sensor failed"},
		},
	}
}

func humiditySensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorRelativeHumidity,
		Flags: []FlagDefinition{
			{Bit: bitHumidityFailed, Severity: SeverityError, Reason: "relative humidity sensor failed"},
		},
	}
}

func windSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorWind,
		Flags: []FlagDefinition{
			{Bit: bitWindFailed, Severity: SeverityError, Reason: "wind sensor failed"},
		},
	}
}

func precipSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorPrecip,
		Flags: []FlagDefinition{
			{Bit: bitPrecipFailed, Severity: SeverityError, Reason: "precip sensor failed"},
		},
	}
}

func lightUVSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorLightUV,
		Flags: []FlagDefinition{
			{Bit: bitLightUVFailed, Severity: SeverityError, Reason: "light/UV sensor failed"},
		},
	}
}

func powerSensor() SensorDefinition {
	return SensorDefinition{
		Label: SensorPower,
		Flags: []FlagDefinition{
			{Bit: bitBoosterDepleted, Severity: SeverityWarning, Reason: "power booster depleted"},
			{Bit: bitBoosterPortOff, Severity: SeverityWarning, Reason: "power booster port off"},
		},
	}
}

// deviceTables keys device-type codes (serial-number prefix before the first
// dash) to the sensors that type carries. ST is the combined sensor unit,
// AR the indoor air module, SK the sky module. Hub/repeater hardware (HB)
// is deliberately absent: it bears no sensors and is filtered upstream.
var deviceTables = map[string][]SensorDefinition{
	"ST": {
		lightningSensor(),
		pressureSensor(),
		temperatureSensor(),
		humiditySensor(),
		windSensor(),
		precipSensor(),
		lightUVSensor(),
		powerSensor(),
	},
	"AR": {
		lightningSensor(),
		pressureSensor(),
		temperatureSensor(),
		humiditySensor(),
	},
	"SK": {
		windSensor(),
		precipSensor(),
		lightUVSensor(),
	},
}

// For returns the sensor definitions for a device type, in table order.
// Unknown types yield an empty slice: nothing monitored, never an error.
func For(deviceType string) []SensorDefinition {
	return deviceTables[deviceType]
}

// MonitoredSensors returns, in stable order, every sensor label that carries
// at least one error-severity flag in any device table. These are the labels
// that can appear in failure sets and per-sensor metrics.
func MonitoredSensors() []string {
	return []string{
		SensorLightning,
		SensorPressure,
		SensorAirTemperature,
		SensorRelativeHumidity,
		SensorWind,
		SensorPrecip,
		SensorLightUV,
	}
}
