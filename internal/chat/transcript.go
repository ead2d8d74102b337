package chat

import "time"

// Role identifies who produced a turn
type Role int

const (
	RoleUser Role = iota
	RoleBot
	RoleError
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleBot:
		return "bot"
	case RoleError:
		return "error"
	default:
		return "unknown"
	}
}

// Turn is one entry of the transcript. Text is display markup.
type Turn struct {
	ID   string
	Role Role
	Text string
	At   time.Time
}

// Transcript is the append-only list of turns
type Transcript struct {
	turns []Turn
}

func (t *Transcript) append(turn Turn) Turn {
	t.turns = append(t.turns, turn)
	return turn
}

// Turns returns a copy of all turns in order
func (t *Transcript) Turns() []Turn {
	turns := make([]Turn, len(t.turns))
	copy(turns, t.turns)
	return turns
}

// Len returns the number of turns
func (t *Transcript) Len() int {
	return len(t.turns)
}
