// Package landmark defines the facial-geometry data handed to the detectors
// and the provider interface that produces it from a camera frame.
package landmark

import (
	"context"
	"math"
)

// Point is a 2D landmark coordinate in frame pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is a face bounding box in frame pixels.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the area of the bounding box.
func (b Box) Area() float64 { return b.Width * b.Height }

// Eye holds the four landmark points used for the eye-aspect ratio.
// Any nil point means the provider could not resolve that landmark.
type Eye struct {
	Inner  *Point `json:"inner"`
	Outer  *Point `json:"outer"`
	Top    *Point `json:"top"`
	Bottom *Point `json:"bottom"`
}

// Complete reports whether all four eye points are present.
func (e Eye) Complete() bool {
	return e.Inner != nil && e.Outer != nil && e.Top != nil && e.Bottom != nil
}

// Mouth holds the upper/lower lip landmarks used for the yawn ratio.
type Mouth struct {
	Top    *Point `json:"top"`
	Bottom *Point `json:"bottom"`
}

// Complete reports whether both mouth points are present.
func (m Mouth) Complete() bool { return m.Top != nil && m.Bottom != nil }

// Face is one detected face with its landmark geometry and head pose.
type Face struct {
	Box        Box     `json:"box"`
	LeftEye    Eye     `json:"left_eye"`
	RightEye   Eye     `json:"right_eye"`
	Mouth      Mouth   `json:"mouth"`
	Yaw        float64 `json:"yaw"` // head yaw in degrees, 0 = facing camera
	Confidence float64 `json:"confidence"`
}

// Frame is the per-cycle detector input: the nearest face (nil when no face
// was found this cycle) plus the presence flag.
type Frame struct {
	Face        *Face
	FaceVisible bool
}

// Provider runs face/landmark detection on a JPEG frame.
type Provider interface {
	// Detect returns zero or more faces found in the image.
	Detect(ctx context.Context, jpeg []byte) ([]Face, error)

	// Close releases resources.
	Close() error
}

// SelectNearest resolves multiple faces to the single nearest one,
// taken as the face with the largest bounding-box area.
func SelectNearest(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}
	best := &faces[0]
	for i := 1; i < len(faces); i++ {
		if faces[i].Box.Area() > best.Box.Area() {
			best = &faces[i]
		}
	}
	return best
}
