package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures JPEG frames from a local V4L2/AVFoundation device via
// OpenCV.
type Webcam struct {
	device *gocv.VideoCapture
	mu     sync.Mutex // capture and encode are not reentrant
}

// OpenWebcam opens the capture device and applies the requested resolution.
func OpenWebcam(deviceID, width, height int) (*Webcam, error) {
	device, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}

	device.Set(gocv.VideoCaptureFrameWidth, float64(width))
	device.Set(gocv.VideoCaptureFrameHeight, float64(height))

	return &Webcam{device: device}, nil
}

// CaptureJPEG grabs one frame and encodes it as JPEG.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.device.Read(&img); !ok {
		return nil, fmt.Errorf("camera read failed")
	}
	if img.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.device.Close()
}

var _ VideoSource = (*Webcam)(nil)
