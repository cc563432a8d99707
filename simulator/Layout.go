package simulator

// DefaultConfig returns the 10×10 maze used by the demo mode: start in
// the top-left corner, goal in the bottom-right, four checkpoints along
// the solution corridor.
func DefaultConfig() Config {
	return Config{
		Layout: [][]int{
			{0, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0, 0, 1, 0, 0, 0},
			{1, 1, 1, 1, 1, 0, 1, 0, 1, 0},
			{1, 0, 0, 0, 1, 0, 1, 0, 1, 0},
			{1, 0, 1, 0, 1, 0, 0, 0, 1, 0},
			{1, 0, 1, 0, 1, 1, 1, 0, 1, 0},
			{1, 0, 1, 0, 0, 0, 0, 0, 1, 0},
			{1, 0, 1, 1, 1, 1, 1, 1, 1, 0},
			{1, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			{1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
		},
		Start: Cell{X: 0, Y: 0},
		Goal:  Cell{X: 9, Y: 9},
		Checkpoints: []Cell{
			{X: 5, Y: 1},
			{X: 7, Y: 4},
			{X: 4, Y: 6},
			{X: 8, Y: 8},
		},
		CellSize: 10.0,
	}
}
