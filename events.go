package impulse

const (
	BODY_ADDED EventType = iota
	BODY_REMOVED
	BODY_DISPOSED
	CONSTRAINT_ADDED
	CONSTRAINT_REMOVED
	CONSTRAINT_BROKE
	COLLISION_BEGIN
	SEPARATE
	CONTROLLER_ADDED
	CONTROLLER_REMOVED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Body events
type BodyAddedEvent struct {
	Body *Body
}

func (e BodyAddedEvent) Type() EventType { return BODY_ADDED }

type BodyRemovedEvent struct {
	Body *Body
}

func (e BodyRemovedEvent) Type() EventType { return BODY_REMOVED }

// BodyDisposedEvent is emitted once, when Dispose is first called.
type BodyDisposedEvent struct {
	Body *Body
}

func (e BodyDisposedEvent) Type() EventType { return BODY_DISPOSED }

// Constraint events
type ConstraintAddedEvent struct {
	Constraint *Constraint
}

func (e ConstraintAddedEvent) Type() EventType { return CONSTRAINT_ADDED }

type ConstraintRemovedEvent struct {
	Constraint *Constraint
}

func (e ConstraintRemovedEvent) Type() EventType { return CONSTRAINT_REMOVED }

// ConstraintBrokeEvent is emitted once when the error of a constraint
// exceeds its breakpoint. Error is the value that broke it.
type ConstraintBrokeEvent struct {
	Constraint *Constraint
	Error      float64
}

func (e ConstraintBrokeEvent) Type() EventType { return CONSTRAINT_BROKE }

// Collision events
type CollisionBeginEvent struct {
	ShapeA *Shape
	ShapeB *Shape
}

func (e CollisionBeginEvent) Type() EventType { return COLLISION_BEGIN }

// SeparateEvent is emitted once when a touching arbiter is torn down.
type SeparateEvent struct {
	ShapeA *Shape
	ShapeB *Shape
}

func (e SeparateEvent) Type() EventType { return SEPARATE }

// Controller events
type ControllerAddedEvent struct {
	Controller Controller
}

func (e ControllerAddedEvent) Type() EventType { return CONTROLLER_ADDED }

type ControllerRemovedEvent struct {
	Controller Controller
}

func (e ControllerRemovedEvent) Type() EventType { return CONTROLLER_REMOVED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// Pending returns the number of buffered events.
func (e *Events) Pending() int {
	return len(e.buffer)
}

// flush sends all buffered events and clears the buffer. Separation
// listeners of both shapes run before the subscribers of SEPARATE.
// Events emitted by listeners are delivered in the same flush.
func (e *Events) flush() {
	for i := 0; i < len(e.buffer); i++ {
		event := e.buffer[i]
		if sep, ok := event.(SeparateEvent); ok {
			if f := sep.ShapeA.OnSeparate; f != nil {
				f(sep.ShapeA, sep.ShapeB)
			}
			if f := sep.ShapeB.OnSeparate; f != nil {
				f(sep.ShapeB, sep.ShapeA)
			}
		}
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	clear(e.buffer)
	e.buffer = e.buffer[:0]
}
