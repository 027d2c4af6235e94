package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/config"
	"github.com/smazurov/campreview/internal/logging"
	"github.com/smazurov/campreview/internal/v4l2cam"
	"github.com/spf13/cobra"
)

// CameraReport is one line of the cameras command output.
type CameraReport struct {
	ID                camera.Identity     `json:"id"`
	Name              string              `json:"name,omitempty"`
	LensFacing        camera.LensFacing   `json:"lens_facing,omitempty"`
	SensorOrientation camera.Angle        `json:"sensor_orientation"`
	Rotation          camera.Angle        `json:"rotation"`
	OutputSizes       []camera.Resolution `json:"output_sizes,omitempty"`
	PreviewSize       *camera.Resolution  `json:"preview_size,omitempty"`
	Error             string              `json:"error,omitempty"`
}

// CreateCamerasCmd creates the cameras command.
func CreateCamerasCmd() *cobra.Command {
	var (
		profilesFile string
		width        int
		height       int
		rotation     int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "cameras",
		Short: "List cameras and the preview size they would use",
		Long: `Enumerates V4L2 capture devices with lens facing, sensor orientation and output sizes. ` +
			`With --width and --height, also prints the preview size chosen for that surface at --rotation.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			logging.Initialize(logging.Config{Level: "warn", Format: "text"})

			display, err := camera.ParseDisplayRotation(rotation)
			if err != nil {
				return err
			}

			profiles, err := config.LoadProfiles(profilesFile)
			if err != nil {
				return err
			}
			if !c.Flags().Changed("rotation") {
				display = profiles.DisplayRotation()
			}

			svc := v4l2cam.NewService(v4l2cam.Options{
				Profiles: ProfileOverrides(config.NewProfileStore(profiles)),
				Logger:   logging.GetLogger("v4l2cam"),
			})
			reports, err := BuildCameraReports(svc, display, width, height)
			if err != nil {
				return err
			}

			if asJSON {
				return WriteCameraReportsJSON(os.Stdout, reports)
			}
			return WriteCameraReports(os.Stdout, reports)
		},
	}

	cmd.Flags().StringVar(&profilesFile, "profiles", "profiles.toml", "Camera profile file")
	cmd.Flags().IntVar(&width, "width", 0, "Surface width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Surface height in pixels")
	cmd.Flags().IntVar(&rotation, "rotation", 0, "Display rotation in degrees (0, 90, 180, 270)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

// ProfileOverrides exposes the current camera profiles to the V4L2 service.
func ProfileOverrides(store *config.ProfileStore) v4l2cam.ProfileFunc {
	return func(path, card string) (v4l2cam.Override, bool) {
		p, ok := store.Get().Lookup(path, card)
		if !ok {
			return v4l2cam.Override{}, false
		}
		var o v4l2cam.Override
		if p.Facing != "" {
			// Validated when the profiles were loaded.
			o.LensFacing, _ = camera.ParseLensFacing(p.Facing)
		}
		if p.SensorOrientation != nil {
			o.SensorOrientation = camera.NormalizeAngle(*p.SensorOrientation)
			o.HasOrientation = true
		}
		return o, true
	}
}

// BuildCameraReports describes every camera svc knows about. A camera
// whose characteristics cannot be read is reported with its error.
func BuildCameraReports(svc camera.Service, display camera.DisplayRotation, width, height int) ([]CameraReport, error) {
	ids, err := svc.ListCameraIdentities()
	if err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}

	reports := make([]CameraReport, 0, len(ids))
	for _, id := range ids {
		r := CameraReport{ID: id}
		ch, chErr := svc.Characteristics(id)
		if chErr != nil {
			r.Error = chErr.Error()
			reports = append(reports, r)
			continue
		}
		r.Name = ch.Name
		r.LensFacing = ch.LensFacing
		r.SensorOrientation = ch.SensorOrientation
		r.OutputSizes = ch.OutputSizes
		r.Rotation = camera.ResolveRotation(ch.SensorOrientation, display)

		if width > 0 && height > 0 {
			_, size, sizeErr := camera.PreviewFor(ch, display, width, height)
			if sizeErr != nil {
				r.Error = sizeErr.Error()
			} else {
				r.PreviewSize = &size
			}
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// WriteCameraReports prints reports as an aligned table.
func WriteCameraReports(w io.Writer, reports []CameraReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFACING\tSENSOR\tROTATION\tPREVIEW\tSIZES")
	for _, r := range reports {
		preview := "-"
		if r.PreviewSize != nil {
			preview = r.PreviewSize.String()
		}
		if r.Error != "" {
			preview = "error: " + r.Error
		}
		sizes := make([]string, 0, len(r.OutputSizes))
		for _, s := range r.OutputSizes {
			sizes = append(sizes, s.String())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.Name, r.LensFacing, r.SensorOrientation, r.Rotation, preview, strings.Join(sizes, " "))
	}
	return tw.Flush()
}

// WriteCameraReportsJSON prints reports as indented JSON.
func WriteCameraReportsJSON(w io.Writer, reports []CameraReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
