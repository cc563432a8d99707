package trackers

// Return tracks the episodic return of every finished episode.
//
// The return recorded here is the shaped reward the agent actually
// learns from, including collision penalties and checkpoint bonuses,
// not the raw simulator signal.
type Return struct {
	episodeReturns []float64
	filename       string
}

// NewReturn creates a Return tracker that saves to filename.
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track appends the episode's return to the series.
func (r *Return) Track(e Episode) {
	r.episodeReturns = append(r.episodeReturns, e.Return)
}

// Save writes the tracked returns to disk.
func (r *Return) Save() error {
	return saveFloats(r.filename, r.episodeReturns)
}
