package directory

import "testing"

func TestBrightnessToLevel(t *testing.T) {
	tests := []struct {
		brightness int
		want       int
	}{
		{0, 0},
		{128, 50},
		{255, 100},
		{-5, 0},
		{300, 100},
	}
	for _, tt := range tests {
		if got := BrightnessToLevel(tt.brightness); got != tt.want {
			t.Errorf("BrightnessToLevel(%d) = %d, want %d", tt.brightness, got, tt.want)
		}
	}
}

func TestLevelToBrightness_Monotonic(t *testing.T) {
	prev := -1
	for level := 0; level <= 100; level++ {
		b := LevelToBrightness(level)
		if b < prev {
			t.Fatalf("LevelToBrightness not monotonic at level %d: %d < %d", level, b, prev)
		}
		prev = b
	}
	if LevelToBrightness(0) != 0 {
		t.Errorf("LevelToBrightness(0) = %d, want 0", LevelToBrightness(0))
	}
	if LevelToBrightness(100) != 255 {
		t.Errorf("LevelToBrightness(100) = %d, want 255", LevelToBrightness(100))
	}
}

func TestNormalizeVolume_Percent(t *testing.T) {
	vc := &VolumeControl{VolumeScale: VolumeScalePercent}

	tests := []struct {
		raw  int
		want float64
	}{
		{0, 0.0},
		{50, 0.5},
		{100, 1.0},
		{-10, 0.0},
		{150, 1.0},
	}
	for _, tt := range tests {
		if got := vc.NormalizeVolume(tt.raw); got != tt.want {
			t.Errorf("percent NormalizeVolume(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeVolume_DB(t *testing.T) {
	vc := &VolumeControl{VolumeScale: VolumeScaleDB}

	tests := []struct {
		raw  int
		want float64
	}{
		{-80, 0.0},
		{-40, 0.5},
		{0, 1.0},
		{-100, 0.0},
		{10, 1.0},
	}
	for _, tt := range tests {
		if got := vc.NormalizeVolume(tt.raw); got != tt.want {
			t.Errorf("dB NormalizeVolume(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDenormalizeVolume_RoundTrip(t *testing.T) {
	for _, scale := range []string{VolumeScalePercent, VolumeScaleDB} {
		vc := &VolumeControl{VolumeScale: scale}
		for raw := vc.DenormalizeVolume(0.0); raw <= vc.DenormalizeVolume(1.0); raw++ {
			got := vc.DenormalizeVolume(vc.NormalizeVolume(raw))
			if got != raw {
				t.Errorf("%s round trip for %d = %d", scale, raw, got)
			}
		}
	}
}
