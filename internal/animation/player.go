package animation

import (
	"fmt"

	"github.com/Faultbox/scenegraph/internal/scene"
)

// Player drives a clip against a model, one Tick per frame.
type Player struct {
	model *scene.Model
	clip  *Clip
	nodes []animatedNode
}

type animatedNode struct {
	node     int
	rest     scene.Transform
	samplers []*Sampler
}

// NewPlayer captures the rest pose of every node the clip animates.
func NewPlayer(model *scene.Model, clip *Clip) *Player {
	p := &Player{model: model, clip: clip}
	index := make(map[int]int)
	for _, tr := range clip.Tracks {
		i, ok := index[tr.Node]
		if !ok {
			i = len(p.nodes)
			index[tr.Node] = i
			p.nodes = append(p.nodes, animatedNode{
				node: tr.Node,
				rest: model.Nodes[tr.Node].Local,
			})
		}
		p.nodes[i].samplers = append(p.nodes[i].samplers, tr.Sampler)
	}
	return p
}

// Clip returns the clip being played.
func (p *Player) Clip() *Clip {
	return p.clip
}

// Nodes returns the model indices of the animated nodes.
func (p *Player) Nodes() []int {
	out := make([]int, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = n.node
	}
	return out
}

// Tick advances every sampler by dt seconds and writes the new local poses.
// Channels a node's samplers do not animate keep their rest values.
// Every sampler is checked first; on error no clock or pose has changed.
func (p *Player) Tick(dt float32) error {
	for _, n := range p.nodes {
		for _, s := range n.samplers {
			if err := s.Check(dt); err != nil {
				return fmt.Errorf("node %d: %w", p.model.Nodes[n.node].Source(), err)
			}
		}
	}

	for _, n := range p.nodes {
		pose := n.rest
		for _, s := range n.samplers {
			var err error
			if pose, err = s.Apply(dt, pose); err != nil {
				return fmt.Errorf("node %d: %w", p.model.Nodes[n.node].Source(), err)
			}
		}
		p.model.SetLocal(n.node, pose)
	}
	return nil
}

// Reset rewinds every sampler and restores rest poses.
func (p *Player) Reset() {
	for _, n := range p.nodes {
		for _, s := range n.samplers {
			s.Reset()
		}
		p.model.SetLocal(n.node, n.rest)
	}
}
