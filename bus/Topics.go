package bus

// Topics shared with the simulator. The learning side publishes the
// action/command topics and subscribes to the rest.
const (
	// TopicAction carries the discrete action index for the current step.
	TopicAction = "Action"

	// TopicStepSeq carries a monotonically increasing step counter
	// published together with each action. The simulator echoes it on
	// TopicAckSeq once the action has been applied, which is the
	// correlation signal that lets a step distinguish a fresh pose from
	// a stale one left over by the previous action.
	TopicStepSeq = "step_seq"
	TopicAckSeq  = "ack_seq"

	// TopicReset commands an episode reset; the simulator echoes the
	// published reset sequence on TopicResetAck once the robot is back
	// at the start pose.
	TopicReset    = "reset"
	TopicResetAck = "reset_ack"

	// TopicMode selects the simulation mode (training or evaluation).
	TopicMode = "mode"

	// Values published on TopicMode.
	ModeTrain float64 = 0
	ModeTest  float64 = 1

	// TopicResetCheckpoints commands the simulator to re-arm its
	// checkpoint triggers at the start of an episode.
	TopicResetCheckpoints = "reset_checkpoints"

	// Confirmed pose after the simulator applied the action.
	TopicX     = "X"
	TopicY     = "Y"
	TopicTheta = "Theta"
	TopicZ     = "Z"

	// TopicCollision is a 0/1 flag for the current step.
	TopicCollision = "Collision"

	// TopicCheckpoint carries the integer id of a newly reached
	// checkpoint, 0 if none.
	TopicCheckpoint = "checkpoint_reached"

	// TopicGoal is a 0/1 flag reporting goal arrival.
	TopicGoal = "GoalReached"

	// TopicTick carries the simulator frame delta.
	TopicTick = "tick"
)
