// Package animation evaluates keyframed translation/rotation/scale channels
// against a looping clock and writes the resulting poses into a scene model.
package animation

import (
	"fmt"
	gomath "math"
	"slices"

	"github.com/Faultbox/scenegraph/internal/scene"
	"github.com/Faultbox/scenegraph/pkg/math"
)

// Sampler holds the keyframes of one node on one timeline together with its
// playback clock. Each channel can be set once; all channels share the
// timeline's sample times.
type Sampler struct {
	timeline int
	bound    bool
	times    []float32

	translation []math.Vec3
	rotation    []math.Quat
	scale       []math.Vec3

	clock float32
}

// SetTimeline binds the sample times. Binding again with the same id is a
// no-op; a different id fails with ErrConfigMismatch.
func (s *Sampler) SetTimeline(id int, times []float32) error {
	if s.bound {
		if id != s.timeline {
			return fmt.Errorf("%w: sampler bound to timeline %d, got %d", scene.ErrConfigMismatch, s.timeline, id)
		}
		return nil
	}
	for i, t := range times {
		if gomath.IsNaN(float64(t)) || gomath.IsInf(float64(t), 0) {
			return fmt.Errorf("%w: time %d is not finite", scene.ErrInvalidAnimationData, i)
		}
		if i > 0 && t <= times[i-1] {
			return fmt.Errorf("%w: times not strictly increasing at %d (%v <= %v)",
				scene.ErrInvalidAnimationData, i, t, times[i-1])
		}
	}
	s.timeline = id
	s.times = slices.Clone(times)
	s.bound = true
	return nil
}

// SetTranslation binds the translation keyframes.
func (s *Sampler) SetTranslation(values []math.Vec3) error {
	if len(s.translation) > 0 {
		return fmt.Errorf("%w: translation", scene.ErrAlreadyBound)
	}
	s.translation = slices.Clone(values)
	return nil
}

// SetRotation binds the rotation keyframes.
func (s *Sampler) SetRotation(values []math.Quat) error {
	if len(s.rotation) > 0 {
		return fmt.Errorf("%w: rotation", scene.ErrAlreadyBound)
	}
	s.rotation = slices.Clone(values)
	return nil
}

// SetScale binds the scale keyframes.
func (s *Sampler) SetScale(values []math.Vec3) error {
	if len(s.scale) > 0 {
		return fmt.Errorf("%w: scale", scene.ErrAlreadyBound)
	}
	s.scale = slices.Clone(values)
	return nil
}

// Validate checks that the sampler can be evaluated: a bound timeline of at
// least two keys, at least one channel, and every channel as long as the
// timeline.
func (s *Sampler) Validate() error {
	if !s.bound {
		return fmt.Errorf("%w: no timeline bound", scene.ErrInvalidAnimationData)
	}
	if len(s.times) < 2 {
		return fmt.Errorf("%w: %d keyframes, need at least 2", scene.ErrInvalidAnimationData, len(s.times))
	}
	if len(s.translation) == 0 && len(s.rotation) == 0 && len(s.scale) == 0 {
		return fmt.Errorf("%w: no channel bound", scene.ErrInvalidAnimationData)
	}
	for _, ch := range []struct {
		path Path
		n    int
	}{
		{PathTranslation, len(s.translation)},
		{PathRotation, len(s.rotation)},
		{PathScale, len(s.scale)},
	} {
		if ch.n != 0 && ch.n != len(s.times) {
			return fmt.Errorf("%w: %s has %d values for %d keyframes",
				scene.ErrInvalidAnimationData, ch.path, ch.n, len(s.times))
		}
	}
	return nil
}

// Has reports whether the channel for path is bound.
func (s *Sampler) Has(path Path) bool {
	switch path {
	case PathTranslation:
		return len(s.translation) > 0
	case PathRotation:
		return len(s.rotation) > 0
	case PathScale:
		return len(s.scale) > 0
	}
	return false
}

// Timeline returns the bound timeline id.
func (s *Sampler) Timeline() (int, bool) {
	return s.timeline, s.bound
}

// Time returns the playback clock in seconds.
func (s *Sampler) Time() float32 {
	return s.clock
}

// Duration returns the last keyframe time, which is also the loop length.
func (s *Sampler) Duration() float32 {
	if len(s.times) == 0 {
		return 0
	}
	return s.times[len(s.times)-1]
}

// Reset rewinds the clock to zero.
func (s *Sampler) Reset() {
	s.clock = 0
}

// Evaluate advances the clock by dt seconds and returns the pose at the new
// time. Unbound channels keep identity values.
func (s *Sampler) Evaluate(dt float32) (scene.Transform, error) {
	return s.Apply(dt, scene.IdentityTransform())
}

// Apply advances the clock by dt seconds and overrides the bound channels of
// base with the sampled values.
//
// Past the last keyframe the clock wraps by subtracting the loop length
// once. A dt that would need a second wrap fails with ErrInvalidAnimationData.
func (s *Sampler) Apply(dt float32, base scene.Transform) (scene.Transform, error) {
	t, err := s.advance(dt)
	if err != nil {
		return base, err
	}
	s.clock = t
	return s.sample(t, base), nil
}

// Check reports whether Apply(dt) would succeed, without touching the clock.
func (s *Sampler) Check(dt float32) error {
	_, err := s.advance(dt)
	return err
}

// advance returns the clock value dt seconds from now.
func (s *Sampler) advance(dt float32) (float32, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if dt < 0 || gomath.IsNaN(float64(dt)) {
		return 0, fmt.Errorf("%w: negative delta %v", scene.ErrInvalidAnimationData, dt)
	}

	maxTime := s.Duration()
	t := s.clock + dt
	if t > maxTime {
		t -= maxTime
	}
	if t > maxTime {
		return 0, fmt.Errorf("%w: delta %v spans more than one %v loop",
			scene.ErrInvalidAnimationData, dt, maxTime)
	}
	return t, nil
}

// Sample returns the pose at time t without touching the clock.
func (s *Sampler) Sample(t float32) (scene.Transform, error) {
	if err := s.Validate(); err != nil {
		return scene.Transform{}, err
	}
	return s.sample(t, scene.IdentityTransform()), nil
}

func (s *Sampler) sample(t float32, base scene.Transform) scene.Transform {
	prev, next, frac := s.segment(t)

	out := base
	if len(s.translation) > 0 {
		out.Translation = s.translation[prev].Lerp(s.translation[next], frac)
	}
	if len(s.rotation) > 0 {
		out.Rotation = s.rotation[prev].Slerp(s.rotation[next], frac).Normalize()
	}
	if len(s.scale) > 0 {
		out.Scale = s.scale[prev].Lerp(s.scale[next], frac)
	}
	return out
}

// segment finds the keyframe pair around t: next is the first key at or
// after t, prev the one before it. Times before the first key clamp to the
// first segment.
func (s *Sampler) segment(t float32) (prev, next int, frac float32) {
	next, _ = slices.BinarySearch(s.times, t)
	next = max(next, 1)
	next = min(next, len(s.times)-1)
	prev = next - 1

	frac = (t - s.times[prev]) / (s.times[next] - s.times[prev])
	frac = max(0, min(1, frac))
	return prev, next, frac
}
