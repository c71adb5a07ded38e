package uvgrtp

// SchedulerEvent is the common embedding for everything the Scheduler
// emits on its event bus, generalized from pipeline.messages.go's
// PipelineMessage/PipelineMessageStart/PipelineMessageStop family into
// collision/probation/timeout observability for the session's hooks.
type SchedulerEvent struct{}

// EventStarted is emitted once when the Scheduler's Run loop begins.
type EventStarted struct {
	SchedulerEvent
}

// EventStopped is emitted once when the Scheduler's Run loop exits,
// after its final BYE has been sent.
type EventStopped struct {
	SchedulerEvent
}

// EventParticipantPromoted is emitted when a pending entry becomes an
// active, on-probation participant.
type EventParticipantPromoted struct {
	SchedulerEvent
	SSRC uint32
}

// EventProbationPassed is emitted when a participant accumulates
// MIN_SEQUENTIAL sequential packets and becomes valid.
type EventProbationPassed struct {
	SchedulerEvent
	SSRC uint32
}

// EventRemoteCollision is emitted when a known SSRC is seen from an
// unexpected address and the packet is dropped.
type EventRemoteCollision struct {
	SchedulerEvent
	SSRC uint32
}

// EventSelfCollision is emitted when our own SSRC is observed on the
// wire and the session regenerates its identity.
type EventSelfCollision struct {
	SchedulerEvent
	OldSSRC uint32
	NewSSRC uint32
}

// EventParticipantTimedOut is emitted when the scheduler evicts a
// participant for inactivity.
type EventParticipantTimedOut struct {
	SchedulerEvent
	SSRC uint32
}

// emit is a non-blocking send onto bus, matching pipeline.node.go's
// emitStart/emitStop "drop rather than block" discipline.
func emit(bus chan interface{}, ev interface{}) {
	if bus == nil {
		return
	}
	select {
	case bus <- ev:
	default:
	}
}
