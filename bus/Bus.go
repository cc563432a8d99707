// Package bus implements the last-value-wins message bus that couples
// the learning loop to an externally clocked simulator.
//
// Each topic holds at most one value: a publish overwrites whatever was
// there before, and a read returns the most recent value or reports the
// topic as absent. There is no queueing and no delivery guarantee beyond
// the overwrite, so anything built on top of a Bus must implement its
// own wait-and-correlate discipline (see environment/maze).
package bus

// Bus is the transport bridge between the learning loop and the
// simulator. Publish is fire-and-forget; Read never blocks.
type Bus interface {
	// Publish overwrites the value currently held by topic.
	Publish(topic string, value float64) error

	// Read returns the latest value published on topic. The boolean
	// reports presence: false means nothing has been published on the
	// topic since the bus was attached, or the stored value was
	// malformed and dropped.
	Read(topic string) (float64, bool, error)
}
