package camera

import "testing"

func TestResolveRotation(t *testing.T) {
	tests := []struct {
		sensor   Angle
		display  DisplayRotation
		want     Angle
		wantSwap bool
	}{
		{90, Rotation0, 90, true},
		{0, Rotation0, 0, false},
		{270, Rotation90, 0, false},
		{90, Rotation90, 180, false},
		{180, Rotation270, 90, true},
		{270, Rotation0, 270, true},
	}

	for _, tt := range tests {
		got := ResolveRotation(tt.sensor, tt.display)
		if got != tt.want {
			t.Errorf("ResolveRotation(%d, %v) = %d, want %d", tt.sensor, tt.display, got, tt.want)
		}
		if swap := SwapRequired(got); swap != tt.wantSwap {
			t.Errorf("SwapRequired(%d) = %v, want %v", got, swap, tt.wantSwap)
		}
	}
}

func TestResolveRotationClosedAndPeriodic(t *testing.T) {
	displays := []DisplayRotation{Rotation0, Rotation90, Rotation180, Rotation270}
	for _, s := range []int{0, 90, 180, 270} {
		for _, d := range displays {
			got := ResolveRotation(Angle(s), d)
			if !got.Valid() {
				t.Errorf("ResolveRotation(%d, %v) = %d, not a right angle", s, d, got)
			}
			for _, k := range []int{-720, -360, 360, 720, 1080} {
				if shifted := ResolveRotation(Angle(s+k), d); shifted != got {
					t.Errorf("ResolveRotation(%d, %v) = %d, want %d (period 360)", s+k, d, shifted, got)
				}
			}
			if SwapRequired(got) != (got == 90 || got == 270) {
				t.Errorf("SwapRequired(%d) inconsistent", got)
			}
		}
	}
}

func TestParseDisplayRotation(t *testing.T) {
	for _, deg := range []int{0, 90, 180, 270} {
		r, err := ParseDisplayRotation(deg)
		if err != nil {
			t.Fatalf("ParseDisplayRotation(%d): %v", deg, err)
		}
		if int(r.Degrees()) != deg {
			t.Errorf("ParseDisplayRotation(%d).Degrees() = %d", deg, r.Degrees())
		}
	}
	if _, err := ParseDisplayRotation(45); err == nil {
		t.Error("expected error for 45 degrees")
	}
	if DisplayRotation(7).Degrees() != 0 {
		t.Error("out-of-range rotation should map to 0")
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := map[int]Angle{0: 0, 90: 90, 360: 0, 450: 90, -90: 270, -450: 270}
	for in, want := range tests {
		if got := NormalizeAngle(in); got != want {
			t.Errorf("NormalizeAngle(%d) = %d, want %d", in, got, want)
		}
	}
}
