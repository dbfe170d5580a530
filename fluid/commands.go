package fluid

// Command is a request queued for the stepping goroutine. Commands are applied
// at the start of the next AdvanceFrame.
type Command interface {
	apply(s *Solver)
}

// ResetCommand reseeds the configured default scenario.
type ResetCommand struct{}

func (ResetCommand) apply(s *Solver) { s.Reset() }

// ScenarioCommand reseeds from the given scenario.
type ScenarioCommand struct {
	Scenario Scenario
}

func (c ScenarioCommand) apply(s *Solver) { s.ResetWith(c.Scenario) }

// GravityCommand replaces the global force.
type GravityCommand struct {
	Gravity Vec2
}

func (c GravityCommand) apply(s *Solver) { s.gravity = c.Gravity }

// Post enqueues cmd without blocking. It returns false if the queue is full.
// Post is the only Solver method safe to call from another goroutine.
func (s *Solver) Post(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

// drainCommands applies every queued command.
func (s *Solver) drainCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd.apply(s)
		default:
			return
		}
	}
}
