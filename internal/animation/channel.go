package animation

import (
	"fmt"

	"github.com/Faultbox/scenegraph/pkg/math"
)

// Path names the animated property of a channel.
type Path int

// Animated properties.
const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func (p Path) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// Channel is a raw keyframe track as handed over by an asset loader.
// Node is the loader's node index; Timeline identifies the shared sample-time
// array so channels on the same timeline end up in one Sampler. Vectors holds
// translation or scale values, Rotations holds quaternions.
type Channel struct {
	Node      int
	Path      Path
	Timeline  int
	Times     []float32
	Vectors   []math.Vec3
	Rotations []math.Quat
}
