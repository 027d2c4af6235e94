package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/config"
)

type fakeService struct {
	ids   []camera.Identity
	chars map[camera.Identity]camera.Characteristics
	err   error
}

func (f *fakeService) ListCameraIdentities() ([]camera.Identity, error) { return f.ids, f.err }

func (f *fakeService) Characteristics(id camera.Identity) (camera.Characteristics, error) {
	ch, ok := f.chars[id]
	if !ok {
		return camera.Characteristics{}, errors.New("no such device")
	}
	return ch, nil
}

func (f *fakeService) OpenCamera(camera.Identity, camera.EventHandler, camera.Executor) error {
	return errors.New("not supported")
}

func testService() *fakeService {
	return &fakeService{
		ids: []camera.Identity{"/dev/video0", "/dev/video1"},
		chars: map[camera.Identity]camera.Characteristics{
			"/dev/video0": {
				Name:              "imx415",
				LensFacing:        camera.LensFacingBack,
				SensorOrientation: 90,
				OutputSizes:       []camera.Resolution{{Width: 1920, Height: 1080}, {Width: 1280, Height: 720}},
			},
		},
	}
}

func TestBuildCameraReports(t *testing.T) {
	reports, err := BuildCameraReports(testService(), camera.Rotation0, 720, 1280)
	if err != nil {
		t.Fatalf("BuildCameraReports() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	r := reports[0]
	if r.Rotation != 90 {
		t.Errorf("rotation = %d, want 90", r.Rotation)
	}
	if r.PreviewSize == nil || *r.PreviewSize != (camera.Resolution{Width: 1280, Height: 720}) {
		t.Errorf("preview size = %v, want 1280x720", r.PreviewSize)
	}
	if reports[1].Error == "" {
		t.Error("expected an error for the camera without characteristics")
	}
}

func TestBuildCameraReportsWithoutSurface(t *testing.T) {
	reports, err := BuildCameraReports(testService(), camera.Rotation90, 0, 0)
	if err != nil {
		t.Fatalf("BuildCameraReports() error = %v", err)
	}
	if reports[0].PreviewSize != nil {
		t.Errorf("preview size = %v, want none without a surface", reports[0].PreviewSize)
	}
	if reports[0].Rotation != 180 {
		t.Errorf("rotation = %d, want 180", reports[0].Rotation)
	}
}

func TestBuildCameraReportsListFailure(t *testing.T) {
	if _, err := BuildCameraReports(&fakeService{err: errors.New("boom")}, camera.Rotation0, 0, 0); err == nil {
		t.Error("expected an error")
	}
}

func TestWriteCameraReports(t *testing.T) {
	reports, _ := BuildCameraReports(testService(), camera.Rotation0, 720, 1280)

	var buf bytes.Buffer
	if err := WriteCameraReports(&buf, reports); err != nil {
		t.Fatalf("WriteCameraReports() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "/dev/video0", "imx415", "1280x720", "1920x1080 1280x720", "error: no such device"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCameraReportsJSON(t *testing.T) {
	reports, _ := BuildCameraReports(testService(), camera.Rotation0, 0, 0)

	var buf bytes.Buffer
	if err := WriteCameraReportsJSON(&buf, reports); err != nil {
		t.Fatalf("WriteCameraReportsJSON() error = %v", err)
	}
	var decoded []CameraReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Name != "imx415" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestProfileOverrides(t *testing.T) {
	orientation := 450
	store := config.NewProfileStore(config.Profiles{
		Cameras: []config.CameraProfile{
			{Match: "/dev/video0", Facing: "front", SensorOrientation: &orientation},
			{Match: "USB Camera"},
		},
	})
	lookup := ProfileOverrides(store)

	o, ok := lookup("/dev/video0", "imx415")
	if !ok {
		t.Fatal("expected a profile for /dev/video0")
	}
	if o.LensFacing != camera.LensFacingFront || !o.HasOrientation || o.SensorOrientation != 90 {
		t.Errorf("override = %+v, want front at 90", o)
	}

	o, ok = lookup("/dev/video4", "USB Camera")
	if !ok {
		t.Fatal("expected a profile matched by card name")
	}
	if o.LensFacing != "" || o.HasOrientation {
		t.Errorf("override = %+v, want empty", o)
	}

	if _, ok := lookup("/dev/video9", "other"); ok {
		t.Error("unexpected profile for unknown camera")
	}
}
