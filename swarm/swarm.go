// Package swarm moves agents across a solved flow field.
package swarm

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flowfield/components"
	"github.com/pthm-cable/flowfield/field"
	"github.com/pthm-cable/flowfield/grid"
)

// ErrNotSolved is returned when the system's field has not been solved.
var ErrNotSolved = errors.New("swarm: field not solved")

// Spawner lays out a CountX by CountY block of agents starting at Origin.
type Spawner struct {
	CountX, CountY int
	Origin         grid.Point
	Spacing        int // cells between agents (0 = 1)
}

// Arrival records an agent that reached the destination.
type Arrival struct {
	Agent uint32
	Start grid.Point
	Steps int // cells moved
	Step  int // simulation step of arrival
}

// StepResult summarises one simulation step.
type StepResult struct {
	Moved   int
	Arrived int
	Stuck   int
}

// RunResult summarises a Run.
type RunResult struct {
	Steps     int
	Arrived   int
	Remaining int
	Stuck     int // agents that could not move on the final step
}

// System owns the agent world for one flow field.
type System struct {
	field *field.FlowField
	world *ecs.World

	walkerMapper *ecs.Map2[components.Cell, components.Walker]
	walkerFilter *ecs.Filter2[components.Cell, components.Walker]

	nextID   uint32
	count    int
	step     int
	arrivals []Arrival
}

// New creates a system that reads directions from f.
func New(f *field.FlowField) *System {
	world := ecs.NewWorld()
	return &System{
		field:        f,
		world:        world,
		walkerMapper: ecs.NewMap2[components.Cell, components.Walker](world),
		walkerFilter: ecs.NewFilter2[components.Cell, components.Walker](world),
	}
}

// Spawn creates agents on every spawner cell that is in bounds, walkable and
// reachable. It returns the number of agents created.
func (s *System) Spawn(sp Spawner) (int, error) {
	if _, solved := s.field.Destination(); !solved {
		return 0, ErrNotSolved
	}
	spacing := sp.Spacing
	if spacing <= 0 {
		spacing = 1
	}

	spawned := 0
	for j := 0; j < sp.CountY; j++ {
		for i := 0; i < sp.CountX; i++ {
			p := sp.Origin.Add(grid.Pt(i*spacing, j*spacing))
			reachable, err := s.field.Reachable(p)
			if errors.Is(err, field.ErrOutOfBounds) {
				continue
			}
			if err != nil {
				return spawned, fmt.Errorf("spawning at %v: %w", p, err)
			}
			if !reachable {
				continue
			}

			s.nextID++
			cell := components.Cell{X: p.X, Y: p.Y}
			walker := components.Walker{ID: s.nextID, Start: cell}
			s.walkerMapper.NewEntity(&cell, &walker)
			s.count++
			spawned++
		}
	}
	return spawned, nil
}

// Step moves every agent one cell along the field. Agents on the
// destination are removed and recorded as arrivals.
func (s *System) Step() (StepResult, error) {
	dest, solved := s.field.Destination()
	if !solved {
		return StepResult{}, ErrNotSolved
	}
	s.step++

	var res StepResult
	var arrived []ecs.Entity

	// First pass: move (must complete before removing)
	query := s.walkerFilter.Query()
	for query.Next() {
		cell, walker := query.Get()
		p := grid.Pt(cell.X, cell.Y)

		if p != dest {
			next, ok, err := s.field.Next(p)
			if err != nil {
				query.Close()
				return res, fmt.Errorf("agent %d at %v: %w", walker.ID, p, err)
			}
			if !ok {
				res.Stuck++
				continue
			}
			cell.X, cell.Y = next.X, next.Y
			walker.Steps++
			res.Moved++
			p = next
		}

		if p == dest {
			arrived = append(arrived, query.Entity())
			s.arrivals = append(s.arrivals, Arrival{
				Agent: walker.ID,
				Start: grid.Pt(walker.Start.X, walker.Start.Y),
				Steps: walker.Steps,
				Step:  s.step,
			})
		}
	}

	// Second pass: remove arrivals (query iteration complete)
	for _, e := range arrived {
		s.world.RemoveEntity(e)
	}
	s.count -= len(arrived)
	res.Arrived = len(arrived)
	return res, nil
}

// Run steps until every agent has arrived, no agent can move, or maxSteps
// is reached (0 = number of cells).
func (s *System) Run(maxSteps int) (RunResult, error) {
	if maxSteps <= 0 {
		maxSteps = s.field.Width() * s.field.Height()
	}

	var res RunResult
	for res.Steps < maxSteps && s.count > 0 {
		step, err := s.Step()
		if err != nil {
			return res, err
		}
		res.Steps++
		res.Arrived += step.Arrived
		res.Stuck = step.Stuck
		if step.Moved == 0 && step.Arrived == 0 {
			break
		}
	}
	res.Remaining = s.count
	return res, nil
}

// Count returns the number of agents still in the world.
func (s *System) Count() int { return s.count }

// Arrivals returns every arrival so far, in arrival order.
func (s *System) Arrivals() []Arrival { return s.arrivals }
