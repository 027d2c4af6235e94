package v4l2cam

import (
	"context"
	"errors"

	"github.com/smazurov/campreview/internal/camera"
)

// errStreamEnded is reported when the driver stops delivering frames while
// the repeating request is still active.
var errStreamEnded = errors.New("frame stream ended")

// forwardFrames copies frames to every target until ctx is cancelled or the
// frame channel closes. A close that is not caused by ctx yields
// errStreamEnded.
func forwardFrames(ctx context.Context, frames <-chan []byte, targets []camera.Surface, onFrame func(size int), onWriteErr func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errStreamEnded
			}
			for _, target := range targets {
				if err := target.WriteFrame(frame); err != nil && onWriteErr != nil {
					onWriteErr(err)
				}
			}
			if onFrame != nil {
				onFrame(len(frame))
			}
		}
	}
}
