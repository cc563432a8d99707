package trackers

// EpisodeLength tracks the number of steps in every finished episode.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength creates an EpisodeLength tracker that saves to
// filename.
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track appends the episode's step count to the series.
func (e *EpisodeLength) Track(ep Episode) {
	e.episodeLengths = append(e.episodeLengths, float64(ep.Steps))
}

// Save writes the tracked lengths to disk.
func (e *EpisodeLength) Save() error {
	return saveFloats(e.filename, e.episodeLengths)
}
