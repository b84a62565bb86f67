package layout

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ritzau/spyglass/pkg/logging"
	"github.com/ritzau/spyglass/pkg/model"
)

// minDistance floors the pair distance used by repulsion so that nearly
// coincident nodes get a large but finite push.
const minDistance = 1.0

// Engine advances node positions with a damped force simulation. It is not
// safe for concurrent use; callers serialize Step with any other access to
// the graph.
type Engine struct {
	rng    *rand.Rand
	forces []r2.Vec
	prev   []r2.Vec
	// stiffness accumulates, per node, the magnitude of the force gradient.
	// integrate uses it to shorten the effective step of stiff nodes.
	stiffness []float64
}

// NewEngine creates an engine. The seed drives the jitter used to separate
// coincident nodes, so equal seeds give reproducible layouts.
func NewEngine(seed uint64) *Engine {
	return &Engine{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Step runs one integration step of length dt. Root and fixed nodes are
// never moved and their velocity is held at zero.
func (e *Engine) Step(g *model.Graph, p Params, dt float64) Stats {
	n := g.Len()
	if n == 0 || dt <= 0 {
		return Stats{}
	}
	e.resize(n)

	for i := range g.Nodes {
		e.forces[i] = r2.Vec{}
		e.stiffness[i] = 0
		e.prev[i] = g.Nodes[i].Position
	}

	e.applyRepulsion(g, p)
	e.applyAttraction(g, p)
	e.applyGravity(g, p)
	e.integrate(g, p, dt)
	if p.MaxLinkDistance > 0 {
		e.clampLinks(g, p.MaxLinkDistance)
	}
	return e.finish(g)
}

func (e *Engine) resize(n int) {
	if cap(e.forces) < n {
		e.forces = make([]r2.Vec, n)
		e.prev = make([]r2.Vec, n)
		e.stiffness = make([]float64, n)
	}
	e.forces = e.forces[:n]
	e.prev = e.prev[:n]
	e.stiffness = e.stiffness[:n]
}

// applyRepulsion pushes every pair apart with magnitude k*mi*mj/d^2
func (e *Engine) applyRepulsion(g *model.Graph, p Params) {
	if p.Repulsion == 0 {
		return
	}
	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			delta := r2.Sub(g.Nodes[i].Position, g.Nodes[j].Position)
			dist := r2.Norm(delta)

			var dir r2.Vec
			if dist < 1e-9 {
				dir = e.jitter()
			} else {
				dir = r2.Scale(1/dist, delta)
			}

			d := math.Max(dist, minDistance)
			k := p.Repulsion * g.Nodes[i].Mass * g.Nodes[j].Mass
			push := r2.Scale(k/(d*d), dir)
			e.forces[i] = r2.Add(e.forces[i], push)
			e.forces[j] = r2.Sub(e.forces[j], push)

			stiff := 2 * k / (d * d * d)
			e.stiffness[i] += stiff
			e.stiffness[j] += stiff
		}
	}
}

// applyAttraction pulls linked nodes together once the link is stretched
// past the spring length. Each link is visited once.
func (e *Engine) applyAttraction(g *model.Graph, p Params) {
	if p.Attraction == 0 {
		return
	}
	for i := range g.Nodes {
		for _, j := range g.Nodes[i].Links {
			if j <= i {
				continue
			}
			delta := r2.Sub(g.Nodes[j].Position, g.Nodes[i].Position)
			dist := r2.Norm(delta)
			if dist <= p.SpringLength || dist < 1e-9 {
				continue
			}
			pull := r2.Scale(p.Attraction*(dist-p.SpringLength)/dist, delta)
			e.forces[i] = r2.Add(e.forces[i], pull)
			e.forces[j] = r2.Sub(e.forces[j], pull)
			e.stiffness[i] += p.Attraction
			e.stiffness[j] += p.Attraction
		}
	}
}

// applyGravity pulls each node toward the origin proportionally to its
// distance and mass
func (e *Engine) applyGravity(g *model.Graph, p Params) {
	if p.Gravity == 0 {
		return
	}
	for i := range g.Nodes {
		pull := r2.Scale(-p.Gravity*g.Nodes[i].Mass, g.Nodes[i].Position)
		e.forces[i] = r2.Add(e.forces[i], pull)
		e.stiffness[i] += p.Gravity * g.Nodes[i].Mass
	}
}

// integrate applies v = D*(v + c*dt*S*F/m) and x += dt*v. The factor
// c = 1/(1 + dt*S*dt*k/m), with k the node's stiffness, is 1 for soft nodes
// and keeps heavily loaded ones from overshooting. Rest states are
// unaffected since only the step length changes.
func (e *Engine) integrate(g *model.Graph, p Params, dt float64) {
	step := dt * p.SimSpeed
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if !node.Movable() {
			node.Velocity = r2.Vec{}
			continue
		}
		mass := node.Mass
		if mass <= 0 {
			mass = 1
		}
		scale := 1 / (1 + step*dt*e.stiffness[i]/mass)
		accel := r2.Scale(scale/mass, e.forces[i])
		node.Velocity = r2.Scale(p.Damping, r2.Add(node.Velocity, r2.Scale(step, accel)))
		node.Position = r2.Add(node.Position, r2.Scale(dt, node.Velocity))
	}
}

// clampLinks pulls the ends of an over-long link back to maxDist. The excess
// is shared between movable ends, or taken entirely by the one movable end.
// A moved end loses its velocity so the correction removes energy instead of
// feeding it back into the next step.
func (e *Engine) clampLinks(g *model.Graph, maxDist float64) {
	for i := range g.Nodes {
		for _, j := range g.Nodes[i].Links {
			if j <= i {
				continue
			}
			a, b := &g.Nodes[i], &g.Nodes[j]
			delta := r2.Sub(b.Position, a.Position)
			dist := r2.Norm(delta)
			if dist <= maxDist || math.IsNaN(dist) || math.IsInf(dist, 0) {
				continue
			}
			excess := r2.Scale((dist-maxDist)/dist, delta)

			switch {
			case a.Movable() && b.Movable():
				half := r2.Scale(0.5, excess)
				a.Position = r2.Add(a.Position, half)
				b.Position = r2.Sub(b.Position, half)
				a.Velocity = r2.Vec{}
				b.Velocity = r2.Vec{}
			case a.Movable():
				a.Position = r2.Add(a.Position, excess)
				a.Velocity = r2.Vec{}
			case b.Movable():
				b.Position = r2.Sub(b.Position, excess)
				b.Velocity = r2.Vec{}
			}
		}
	}
}

// finish scrubs non-finite state and collects stats
func (e *Engine) finish(g *model.Graph) Stats {
	var stats Stats
	for i := range g.Nodes {
		node := &g.Nodes[i]
		if !finite(node.Position) || !finite(node.Velocity) {
			stats.Scrubbed++
			node.Velocity = r2.Vec{}
			if finite(e.prev[i]) {
				node.Position = e.prev[i]
			} else {
				node.Position = e.jitter()
			}
			continue
		}
		speed2 := r2.Norm2(node.Velocity)
		stats.KineticEnergy += 0.5 * node.Mass * speed2
		stats.MaxSpeed = math.Max(stats.MaxSpeed, math.Sqrt(speed2))
	}

	if stats.Scrubbed > 0 {
		logging.Warn("layout produced non-finite state", "nodes", stats.Scrubbed)
	}
	return stats
}

// jitter returns a random unit vector
func (e *Engine) jitter() r2.Vec {
	angle := e.rng.Float64() * 2 * math.Pi
	return r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
