package trackers

// Success tracks a 0/1 flag per episode marking whether the robot
// reached the goal. The series divides cleanly into trailing-window
// success rates during analysis.
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess creates a Success tracker that saves to filename.
func NewSuccess(filename string) *Success {
	return &Success{filename: filename}
}

// Track appends 1 for a goal episode, 0 otherwise.
func (s *Success) Track(e Episode) {
	if e.Success {
		s.successes = append(s.successes, 1)
	} else {
		s.successes = append(s.successes, 0)
	}
}

// Save writes the tracked flags to disk.
func (s *Success) Save() error {
	return saveFloats(s.filename, s.successes)
}
