package animation

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/scenegraph/internal/scene"
	"github.com/Faultbox/scenegraph/pkg/math"
)

func newTranslationSampler(t *testing.T, times []float32, values []math.Vec3) *Sampler {
	t.Helper()
	s := &Sampler{}
	if err := s.SetTimeline(0, times); err != nil {
		t.Fatalf("SetTimeline: %v", err)
	}
	if err := s.SetTranslation(values); err != nil {
		t.Fatalf("SetTranslation: %v", err)
	}
	return s
}

func TestEvaluateMidpointIsExact(t *testing.T) {
	s := newTranslationSampler(t,
		[]float32{0, 10},
		[]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}})

	got, err := s.Evaluate(5)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got.Translation != (math.Vec3{X: 5}) {
		t.Errorf("translation at t=5 = %v, want exactly (5, 0, 0)", got.Translation)
	}
	if got.Scale != math.Vec3One() || got.Rotation != math.QuatIdentity() {
		t.Errorf("unbound channels should stay identity, got %+v", got)
	}
}

func TestEvaluateWrapsWithSingleSubtract(t *testing.T) {
	times := []float32{0, 1, 2}
	values := []math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 4, Y: 0, Z: 0}}

	once := newTranslationSampler(t, times, values)
	gotOnce, err := once.Evaluate(2.5)
	if err != nil {
		t.Fatalf("Evaluate(2.5): %v", err)
	}

	stepped := newTranslationSampler(t, times, values)
	atEnd, err := stepped.Evaluate(2.0)
	if err != nil {
		t.Fatalf("Evaluate(2.0): %v", err)
	}
	if atEnd.Translation != (math.Vec3{X: 4}) {
		t.Errorf("exactly at the last key the clock must not wrap, got %v", atEnd.Translation)
	}
	gotStepped, err := stepped.Evaluate(0.5)
	if err != nil {
		t.Fatalf("Evaluate(0.5): %v", err)
	}

	if gotOnce != gotStepped {
		t.Errorf("Evaluate(2.5) = %+v, Evaluate(2.0)+Evaluate(0.5) = %+v", gotOnce, gotStepped)
	}
	if once.Time() != 0.5 || stepped.Time() != 0.5 {
		t.Errorf("clocks = %v and %v, want 0.5", once.Time(), stepped.Time())
	}
	if gotOnce.Translation != (math.Vec3{X: 0.5}) {
		t.Errorf("wrapped translation = %v, want (0.5, 0, 0)", gotOnce.Translation)
	}
}

func TestEvaluateRejectsDoubleWrap(t *testing.T) {
	s := newTranslationSampler(t,
		[]float32{0, 1, 2},
		[]math.Vec3{{}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}})

	if _, err := s.Evaluate(4.5); !errors.Is(err, scene.ErrInvalidAnimationData) {
		t.Errorf("Evaluate(4.5) error = %v, want ErrInvalidAnimationData", err)
	}
	if s.Time() != 0 {
		t.Errorf("failed evaluation moved the clock to %v", s.Time())
	}
}

func TestEvaluateRejectsNegativeDelta(t *testing.T) {
	s := newTranslationSampler(t, []float32{0, 1}, []math.Vec3{{}, {X: 1, Y: 0, Z: 0}})
	if _, err := s.Evaluate(-0.1); !errors.Is(err, scene.ErrInvalidAnimationData) {
		t.Errorf("Evaluate(-0.1) error = %v, want ErrInvalidAnimationData", err)
	}
}

func TestSampleAtKeyframes(t *testing.T) {
	s := newTranslationSampler(t,
		[]float32{0, 1, 3},
		[]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 2, Y: 6, Z: 0}})

	tests := []struct {
		time float32
		want math.Vec3
	}{
		{0, math.Vec3{}},
		{1, math.Vec3{X: 2}},
		{3, math.Vec3{X: 2, Y: 6}},
		{0.5, math.Vec3{X: 1}},
		{2, math.Vec3{X: 2, Y: 3}},
	}
	for _, tt := range tests {
		got, err := s.Sample(tt.time)
		if err != nil {
			t.Fatalf("Sample(%v): %v", tt.time, err)
		}
		if !got.Translation.ApproxEqual(tt.want, 1e-6) {
			t.Errorf("Sample(%v) = %v, want %v", tt.time, got.Translation, tt.want)
		}
	}
}

func TestSampleBeforeFirstKeyClampsToFirstValue(t *testing.T) {
	s := newTranslationSampler(t,
		[]float32{1, 2},
		[]math.Vec3{{X: 3, Y: 3, Z: 3}, {X: 5, Y: 5, Z: 5}})

	got, err := s.Sample(0.25)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if got.Translation != (math.Vec3{X: 3, Y: 3, Z: 3}) {
		t.Errorf("Sample before first key = %v, want first keyframe value", got.Translation)
	}
}

func TestSampleIsContinuous(t *testing.T) {
	s := &Sampler{}
	times := []float32{0, 0.5, 1.25, 2}
	if err := s.SetTimeline(7, times); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTranslation([]math.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 2, Z: 0}, {X: -1, Y: 0, Z: 3}, {X: 0, Y: 0, Z: 0}}); err != nil {
		t.Fatal(err)
	}
	axis := math.Vec3{X: 0, Y: 1, Z: 0}
	if err := s.SetRotation([]math.Quat{
		math.QuatIdentity(),
		math.QuatFromAxisAngle(axis, 1),
		math.QuatFromAxisAngle(axis, 2.5),
		math.QuatFromAxisAngle(axis, 3),
	}); err != nil {
		t.Fatal(err)
	}

	const eps = 1e-3
	for tm := float32(0); tm+eps <= 2; tm += 0.01 {
		a, _ := s.Sample(tm)
		b, _ := s.Sample(tm + eps)
		if d := a.Translation.Sub(b.Translation).Length(); d > 20*eps {
			t.Fatalf("translation jumps by %v between %v and %v", d, tm, tm+eps)
		}
		if !a.Rotation.ApproxEqual(b.Rotation, 20*eps) {
			t.Fatalf("rotation jumps between %v and %v: %v vs %v", tm, tm+eps, a.Rotation, b.Rotation)
		}
	}
}

func TestRotationIsAlwaysUnit(t *testing.T) {
	s := &Sampler{}
	if err := s.SetTimeline(0, []float32{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	// Deliberately unnormalized keys.
	if err := s.SetRotation([]math.Quat{
		{X: 0, Y: 0, Z: 0, W: 2},
		{X: 0, Y: 3, Z: 0, W: 3},
		{X: 0.2, Y: 0.1, Z: -4, W: 0.5},
	}); err != nil {
		t.Fatal(err)
	}

	for tm := float32(0); tm <= 2; tm += 0.05 {
		got, err := s.Sample(tm)
		if err != nil {
			t.Fatal(err)
		}
		if n := got.Rotation.Len(); gomath.Abs(float64(n-1)) > 1e-5 {
			t.Errorf("rotation norm at %v = %v, want 1", tm, n)
		}
	}
}

func TestApplyKeepsUnboundChannels(t *testing.T) {
	s := &Sampler{}
	if err := s.SetTimeline(0, []float32{0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetScale([]math.Vec3{{X: 1, Y: 1, Z: 1}, {X: 3, Y: 3, Z: 3}}); err != nil {
		t.Fatal(err)
	}

	base := scene.IdentityTransform()
	base.Translation = math.Vec3{X: 9}
	got, err := s.Apply(0.5, base)
	if err != nil {
		t.Fatal(err)
	}
	if got.Translation != base.Translation {
		t.Errorf("translation = %v, want base %v", got.Translation, base.Translation)
	}
	if got.Scale != (math.Vec3{X: 2, Y: 2, Z: 2}) {
		t.Errorf("scale = %v, want (2, 2, 2)", got.Scale)
	}
}

func TestSamplerBindingErrors(t *testing.T) {
	t.Run("timeline id mismatch", func(t *testing.T) {
		s := &Sampler{}
		if err := s.SetTimeline(1, []float32{0, 1}); err != nil {
			t.Fatal(err)
		}
		if err := s.SetTimeline(1, []float32{0, 1}); err != nil {
			t.Errorf("rebinding the same timeline should be accepted, got %v", err)
		}
		if err := s.SetTimeline(2, []float32{0, 1}); !errors.Is(err, scene.ErrConfigMismatch) {
			t.Errorf("error = %v, want ErrConfigMismatch", err)
		}
	})

	t.Run("channel set twice", func(t *testing.T) {
		s := &Sampler{}
		vals := []math.Vec3{{}, {X: 1, Y: 1, Z: 1}}
		if err := s.SetTranslation(vals); err != nil {
			t.Fatal(err)
		}
		if err := s.SetTranslation(vals); !errors.Is(err, scene.ErrAlreadyBound) {
			t.Errorf("translation error = %v, want ErrAlreadyBound", err)
		}
		if err := s.SetScale(vals); err != nil {
			t.Fatal(err)
		}
		if err := s.SetScale(vals); !errors.Is(err, scene.ErrAlreadyBound) {
			t.Errorf("scale error = %v, want ErrAlreadyBound", err)
		}
		rots := []math.Quat{math.QuatIdentity(), math.QuatIdentity()}
		if err := s.SetRotation(rots); err != nil {
			t.Fatal(err)
		}
		if err := s.SetRotation(rots); !errors.Is(err, scene.ErrAlreadyBound) {
			t.Errorf("rotation error = %v, want ErrAlreadyBound", err)
		}
	})

	t.Run("times not increasing", func(t *testing.T) {
		s := &Sampler{}
		if err := s.SetTimeline(0, []float32{0, 1, 1}); !errors.Is(err, scene.ErrInvalidAnimationData) {
			t.Errorf("error = %v, want ErrInvalidAnimationData", err)
		}
	})
}

func TestEvaluateInvalidData(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Sampler) error
	}{
		{"no timeline", func(*Sampler) error { return nil }},
		{"single keyframe", func(s *Sampler) error {
			if err := s.SetTimeline(0, []float32{0}); err != nil {
				return err
			}
			return s.SetTranslation([]math.Vec3{{}})
		}},
		{"no channel", func(s *Sampler) error {
			return s.SetTimeline(0, []float32{0, 1})
		}},
		{"length mismatch", func(s *Sampler) error {
			if err := s.SetTimeline(0, []float32{0, 1, 2}); err != nil {
				return err
			}
			return s.SetTranslation([]math.Vec3{{}, {X: 1, Y: 0, Z: 0}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sampler{}
			if err := tt.setup(s); err != nil {
				t.Fatalf("setup: %v", err)
			}
			if _, err := s.Evaluate(0.1); !errors.Is(err, scene.ErrInvalidAnimationData) {
				t.Errorf("Evaluate error = %v, want ErrInvalidAnimationData", err)
			}
		})
	}
}

func TestCheckDoesNotAdvance(t *testing.T) {
	s := newTranslationSampler(t, []float32{0, 1, 2}, []math.Vec3{{}, {X: 1}, {X: 2}})

	if err := s.Check(1.5); err != nil {
		t.Errorf("Check(1.5): %v", err)
	}
	if err := s.Check(4.5); !errors.Is(err, scene.ErrInvalidAnimationData) {
		t.Errorf("Check(4.5) error = %v, want ErrInvalidAnimationData", err)
	}
	if s.Time() != 0 {
		t.Errorf("clock = %v after Check, want 0", s.Time())
	}
}
