// ABOUTME: Webcam driver backed by OpenCV video capture
// ABOUTME: Probes V4L2-style numeric device IDs and encodes frames as JPEG

package camera

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"
)

// maxProbedDevices bounds the device scan; V4L2 hosts rarely expose more.
const maxProbedDevices = 4

// warmupFrames is how many frames to discard before the shot. Webcams need a
// few reads for exposure and white balance to settle.
const warmupFrames = 5

// WebcamDriver captures photos through OpenCV.
type WebcamDriver struct{}

// Compile-time check that WebcamDriver implements Driver.
var _ Driver = (*WebcamDriver)(nil)

// NewWebcamDriver creates the OpenCV-backed driver.
func NewWebcamDriver() *WebcamDriver {
	return &WebcamDriver{}
}

// Devices probes numeric capture devices and returns the ones that open.
func (d *WebcamDriver) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	for id := 0; id < maxProbedDevices; id++ {
		if err := ctx.Err(); err != nil {
			return devices, err
		}
		vc, err := gocv.OpenVideoCapture(id)
		if err != nil {
			continue
		}
		if vc.IsOpened() {
			devices = append(devices, Device{ID: id, Name: fmt.Sprintf("video%d", id)})
		}
		_ = vc.Close()
	}
	return devices, nil
}

// Open activates a capture device by ID.
func (d *WebcamDriver) Open(_ context.Context, id int) (Capturer, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open video device %d: %w", id, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("video device %d did not open", id)
	}
	return &webcamCapturer{vc: vc, id: id}, nil
}

type webcamCapturer struct {
	vc *gocv.VideoCapture
	id int
}

// TakePhoto grabs a frame after warmup and encodes it as JPEG.
func (c *webcamCapturer) TakePhoto(ctx context.Context) (*Frame, error) {
	img := gocv.NewMat()
	defer img.Close()

	for i := 0; i <= warmupFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ok := c.vc.Read(&img); !ok {
			return nil, fmt.Errorf("read frame from device %d failed", c.id)
		}
	}
	if img.Empty() {
		return nil, fmt.Errorf("device %d produced an empty frame", c.id)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	return &Frame{
		Data:   data,
		Width:  img.Cols(),
		Height: img.Rows(),
		Ext:    ".jpg",
	}, nil
}

// Close releases the device handle.
func (c *webcamCapturer) Close() error {
	return c.vc.Close()
}
