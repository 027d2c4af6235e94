package camera

import "slices"

// ChooseOptimalSize picks the preview size for a target surface of
// width x height.
//
// Candidates must have exactly the target aspect ratio, compared with
// truncating integer arithmetic (height == width*targetHeight/targetWidth),
// and be at least as large as the target in both dimensions. The smallest
// such candidate by area wins. When nothing qualifies the first candidate
// is returned unchanged, so the platform's preferred order decides the
// fallback.
func ChooseOptimalSize(candidates []Resolution, width, height int) (Resolution, error) {
	if len(candidates) == 0 {
		return Resolution{}, NewError(ErrCodeInvalidSizes, "no output sizes to choose from", nil)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, NewError(ErrCodeInvalidSizes, "target size must be positive", nil)
	}

	bigEnough := make([]Resolution, 0, len(candidates))
	for _, option := range candidates {
		if option.Width <= 0 || option.Height <= 0 {
			continue
		}
		if int64(option.Height) == int64(option.Width)*int64(height)/int64(width) &&
			option.Width >= width && option.Height >= height {
			bigEnough = append(bigEnough, option)
		}
	}

	if len(bigEnough) > 0 {
		return slices.MinFunc(bigEnough, CompareByArea), nil
	}
	return candidates[0], nil
}

// PreviewFor resolves the total rotation and the preview size a camera
// would get for a width x height surface on the given display. The
// surface size is swapped into sensor orientation first when the
// rotation requires it.
func PreviewFor(ch Characteristics, display DisplayRotation, width, height int) (Angle, Resolution, error) {
	rotation := ResolveRotation(ch.SensorOrientation, display)
	target := Resolution{Width: width, Height: height}
	if SwapRequired(rotation) {
		target = target.Swapped()
	}
	size, err := ChooseOptimalSize(ch.OutputSizes, target.Width, target.Height)
	return rotation, size, err
}
