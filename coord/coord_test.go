package coord

import "testing"

func TestScreenToPDFNoRotation(t *testing.T) {
	p := ScreenToPDF(Point{X: 100, Y: 50}, 600, 800, 1, Rotate0)
	if p.X != 100 || p.Y != 750 {
		t.Fatalf("ScreenToPDF(no rotation) = %+v, want {100 750}", p)
	}
}

func TestScreenToPDFWithPixelsPerPoint(t *testing.T) {
	p := ScreenToPDF(Point{X: 200, Y: 100}, 600, 800, 2, Rotate0)
	if p.X != 100 || p.Y != 750 {
		t.Fatalf("ScreenToPDF(2x scale) = %+v, want {100 750}", p)
	}
}

func TestScreenToPDFRotate90(t *testing.T) {
	p := ScreenToPDF(Point{X: 10, Y: 20}, 600, 800, 1, Rotate90)
	if p.X != 20 || p.Y != 10 {
		t.Fatalf("ScreenToPDF(90deg) = %+v, want {20 10}", p)
	}
}

func TestScreenToPDFRotate180(t *testing.T) {
	p := ScreenToPDF(Point{X: 10, Y: 20}, 600, 800, 1, Rotate180)
	if p.X != 590 || p.Y != 20 {
		t.Fatalf("ScreenToPDF(180deg) = %+v, want {590 20}", p)
	}
}

func TestScreenToPDFRotate270(t *testing.T) {
	p := ScreenToPDF(Point{X: 10, Y: 20}, 600, 800, 1, Rotate270)
	if p.X != 580 || p.Y != 790 {
		t.Fatalf("ScreenToPDF(270deg) = %+v, want {580 790}", p)
	}
}

func TestScreenRectToPDFNormalizes(t *testing.T) {
	r := ScreenRectToPDF(100, 200, 50, 150, 600, 800, 1, Rotate0)
	if r.X0 > r.X1 || r.Y0 > r.Y1 {
		t.Fatalf("ScreenRectToPDF did not normalize: %+v", r)
	}
}

func TestNormalizeRotationSnapsToNearest90(t *testing.T) {
	cases := map[int]Rotation{
		0:   Rotate0,
		89:  Rotate90,
		91:  Rotate90,
		180: Rotate180,
		270: Rotate270,
		360: Rotate0,
		-90: Rotate270,
	}
	for in, want := range cases {
		if got := NormalizeRotation(in); got != want {
			t.Errorf("NormalizeRotation(%d) = %v, want %v", in, got, want)
		}
	}
}
