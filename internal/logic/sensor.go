package logic

// Analog input and calibration constants. The temperature transfer function
// assumes a 10 mV/°C sensor read against a 5 V reference; it is fixed at
// build time.
const (
	RawMax   = 1023
	LevelMax = 255

	ReferenceVoltage = 5.0
	DegreesPerVolt   = 100.0
)

// MapRange linearly rescales in from [inMin, inMax] to [outMin, outMax] using
// integer arithmetic. The result truncates toward zero and is not clamped, so
// inputs outside the domain extrapolate.
func MapRange(in, inMin, inMax, outMin, outMax int) int {
	return (in-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// ActuationLevel converts a control channel sample into a duty level.
func ActuationLevel(raw int) int {
	return MapRange(raw, 0, RawMax, 0, LevelMax)
}

// Temperature converts a temperature channel sample into degrees C.
// Out-of-range samples are not rejected; a faulty sensor simply reads wrong.
func Temperature(raw int) float64 {
	voltage := float64(raw) / 1023.0 * ReferenceVoltage
	return voltage * DegreesPerVolt
}
