// ABOUTME: Platform camera API boundary
// ABOUTME: Device listing, activation, and photo capture as raw bytes plus dimensions

package camera

import "context"

// Device identifies an attached camera.
type Device struct {
	ID   int
	Name string
}

// Frame is one captured photo: encoded bytes plus pixel dimensions.
type Frame struct {
	Data   []byte
	Width  int
	Height int
	// Ext is the encoded format's file extension, including the dot.
	Ext string
}

// Driver lists available camera devices and activates one.
type Driver interface {
	Devices(ctx context.Context) ([]Device, error)
	Open(ctx context.Context, id int) (Capturer, error)
}

// Capturer is an activated camera device. The underlying device handle is
// exclusive; callers must Close it before opening another.
type Capturer interface {
	TakePhoto(ctx context.Context) (*Frame, error)
	Close() error
}
