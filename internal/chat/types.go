package chat

import (
	"regexp"

	"github.com/google/uuid"
)

// Identity is the opaque per-connection token. It is assigned at accept time
// and never reused.
type Identity string

// NewIdentity returns a fresh random identity.
func NewIdentity() Identity {
	return Identity(uuid.NewString())
}

// User is a Directory entry for a joined connection.
type User struct {
	ID   Identity
	Name string
	Out  LineSender
	seq  uint64
}

// Recipient is a point-in-time copy of a Directory entry handed to the
// Broadcaster.
type Recipient struct {
	ID   Identity
	Name string
	Out  LineSender
}

// LineSender is the outbound-write capability of a connection. Send must be
// safe for concurrent use and must write the line atomically.
type LineSender interface {
	Send(line string) error
}

// State is the Session lifecycle position.
type State int

const (
	StateConnecting State = iota
	StateAwaitingName
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingName:
		return "awaiting_name"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	promptLine    = "Welcome to budgetchat! What shall I call you?"
	rosterPrefix  = "The room contains: "
	enteredSuffix = " has entered the room"
	leftSuffix    = " has left the room"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidName reports whether name is acceptable as a display name.
func ValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}

var (
	ErrNameInvalid    = errorString("name_invalid")
	ErrEndOfStream    = errorString("end_of_stream")
	ErrOutboundClosed = errorString("outbound_closed")
	ErrOutboundFull   = errorString("outbound_full")
	ErrServerClosed   = errorString("server_closed")
)

type errorString string

func (e errorString) Error() string { return string(e) }
