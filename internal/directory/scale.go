package directory

import "math"

// Volume scales reported by volume-control services.
const (
	VolumeScalePercent = "percent"
	VolumeScaleDB      = "dB"
)

// dB volume range reported by audio switch matrices.
const (
	dbVolumeMin  = -80.0
	dbVolumeSpan = 80.0
)

// BrightnessToLevel converts a 0-255 brightness to a 0-100 dimmer level.
func BrightnessToLevel(brightness int) int {
	if brightness < 0 {
		brightness = 0
	}
	if brightness > 255 {
		brightness = 255
	}
	return int(math.Round(float64(brightness) * 100.0 / 255.0))
}

// LevelToBrightness converts a 0-100 dimmer level to a 0-255 brightness.
func LevelToBrightness(level int) int {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return int(math.Round(float64(level) * 255.0 / 100.0))
}

// NormalizeVolume converts a raw volume value from component state into the
// 0.0-1.0 range, honouring the control's scale. Out-of-range inputs clamp.
func (vc *VolumeControl) NormalizeVolume(raw int) float64 {
	var normalized float64
	switch vc.VolumeScale {
	case VolumeScaleDB:
		normalized = (float64(raw) - dbVolumeMin) / dbVolumeSpan
	default:
		normalized = float64(raw) / 100.0
	}
	return clamp01(normalized)
}

// DenormalizeVolume converts a 0.0-1.0 volume into the control's raw scale.
func (vc *VolumeControl) DenormalizeVolume(volume float64) int {
	volume = clamp01(volume)
	switch vc.VolumeScale {
	case VolumeScaleDB:
		return int(math.Round(volume*dbVolumeSpan + dbVolumeMin))
	default:
		return int(math.Round(volume * 100.0))
	}
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
