package canvas

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func colorAt(t *testing.T, data []byte, x, y int) color.NRGBA {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode capture: %v", err)
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestCaptureRespectsPaintOrder(t *testing.T) {
	a := NewLayer("A", "", "", 0.5)
	a.SetImage(solid(40, 40, red))
	b := NewLayer("B", "", "", 0.5)
	b.SetImage(solid(40, 40, blue))
	s := NewStack([]*Layer{a, b})
	c := NewCompositor(testSettings())

	data, err := c.Capture(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if got := colorAt(t, data, 50, 50); got != blue {
		t.Fatalf("[A, B]: center = %v, want B on top", got)
	}

	if _, err := s.Reorder([]string{"B", "A"}); err != nil {
		t.Fatal(err)
	}
	data, err = c.Capture(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if got := colorAt(t, data, 50, 50); got != red {
		t.Errorf("[B, A]: center = %v, want A on top", got)
	}
}

func TestCaptureUsesCurrentPositions(t *testing.T) {
	a := NewLayer("A", "", "", 0.5)
	a.SetImage(solid(40, 40, red))
	s := NewStack([]*Layer{a})
	c := NewCompositor(testSettings())

	_ = s.With("A", func(l *Layer) {
		l.BeginDrag()
		l.UpdateDrag(Point{X: -30, Y: 0}, 2)
		l.EndDrag()
	})
	data, err := c.Capture(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if got := colorAt(t, data, 50, 50); got != white {
		t.Errorf("center after drag = %v, want background", got)
	}
	if got := colorAt(t, data, 20, 50); got != red {
		t.Errorf("dragged layer pixel = %v, want red", got)
	}
}

func TestCaptureSkipsUnloadedLayers(t *testing.T) {
	s := NewStack([]*Layer{NewLayer("ghost", "", "", 0.5)})
	c := NewCompositor(testSettings())

	data, err := c.Capture(s.Snapshot())
	if err != nil {
		t.Fatalf("capture with unloaded layer: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("capture returned no bytes")
	}
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if got := colorAt(t, data, 50, 50); got != white {
		t.Errorf("center = %v, want background", got)
	}
}

func TestInvalidBackgroundFailsCapture(t *testing.T) {
	c := &Compositor{settings: Settings{Width: 10, Height: 10, Background: "purple"}}
	if _, err := c.Capture(nil); err == nil {
		t.Fatal("expected capture failure for bad background")
	}
}
