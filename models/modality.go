package models

// Modality identifies one sensor stream within a recording session.
type Modality string

const (
	ModalityAccel Modality = "accel"
	ModalityGyro  Modality = "gyro"
	ModalityMag   Modality = "mag"
)

func (m Modality) String() string { return string(m) }

// axisNames covers the common 3-axis case; higher channels fall back to
// a numeric suffix.
var axisNames = [...]string{"x", "y", "z"}

// AxisName returns the canonical per-channel suffix used in column names:
// x, y, z for the first three channels, then c3, c4, …
func AxisName(i int) string {
	if i >= 0 && i < len(axisNames) {
		return axisNames[i]
	}
	return "c" + itoa(i)
}
