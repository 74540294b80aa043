package animation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
)

// Track binds one sampler to a node of a built model.
type Track struct {
	Node    int // index into scene.Model.Nodes
	Sampler *Sampler
}

// Clip is a named set of tracks played together.
type Clip struct {
	Name   string
	Tracks []Track
}

type trackKey struct {
	node     int
	timeline int
}

// NewClip groups raw channels into samplers, one per (node, timeline) pair,
// so channels of one node sampled at different rates keep their own clocks.
// Every sampler is validated here; a clip that builds will evaluate.
// Channels aimed at nodes outside the model's scene are skipped.
func NewClip(model *scene.Model, name string, channels []Channel) (*Clip, error) {
	clip := &Clip{Name: name}
	byKey := make(map[trackKey]int)

	for i := range channels {
		ch := &channels[i]
		node, ok := model.NodeBySource(ch.Node)
		if !ok {
			logger.Warn("animation channel targets node outside scene",
				zap.String("clip", name),
				zap.Int("channel", i),
				zap.Int("node", ch.Node))
			continue
		}
		if model.Nodes[node].HasMatrix {
			return nil, fmt.Errorf("%w: clip %q channel %d animates node %d which has an explicit matrix",
				scene.ErrMalformedScene, name, i, ch.Node)
		}

		key := trackKey{node: node, timeline: ch.Timeline}
		ti, ok := byKey[key]
		if !ok {
			ti = len(clip.Tracks)
			byKey[key] = ti
			clip.Tracks = append(clip.Tracks, Track{Node: node, Sampler: &Sampler{}})
		}

		if err := bindChannel(clip.Tracks[ti].Sampler, ch); err != nil {
			return nil, fmt.Errorf("clip %q channel %d (%s of node %d): %w", name, i, ch.Path, ch.Node, err)
		}
	}

	for _, tr := range clip.Tracks {
		if err := tr.Sampler.Validate(); err != nil {
			return nil, fmt.Errorf("clip %q node %d: %w", name, model.Nodes[tr.Node].Source(), err)
		}
	}

	logger.Debug("animation clip bound",
		zap.String("clip", name),
		zap.Int("channels", len(channels)),
		zap.Int("tracks", len(clip.Tracks)),
		zap.Float32("duration", clip.Duration()))

	return clip, nil
}

func bindChannel(s *Sampler, ch *Channel) error {
	if err := s.SetTimeline(ch.Timeline, ch.Times); err != nil {
		return err
	}
	switch ch.Path {
	case PathTranslation:
		return s.SetTranslation(ch.Vectors)
	case PathScale:
		return s.SetScale(ch.Vectors)
	case PathRotation:
		return s.SetRotation(ch.Rotations)
	default:
		return fmt.Errorf("%w: unknown path %s", scene.ErrInvalidAnimationData, ch.Path)
	}
}

// Duration returns the longest loop among the clip's samplers.
func (c *Clip) Duration() float32 {
	var d float32
	for _, tr := range c.Tracks {
		d = max(d, tr.Sampler.Duration())
	}
	return d
}
