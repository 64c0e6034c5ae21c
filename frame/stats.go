package frame

import "time"

// ImageStats counts what happened to one swap chain image's in-flight tracking
// slot since the last recreation.
type ImageStats struct {
	Acquires int
	// Waits is how often a frame blocked on the fence tracking this image.
	Waits int
	// Marks is how often the tracking slot was set to a frame's fence.
	Marks int
	// Clears is how often a set tracking slot was observed complete and dropped.
	Clears int
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Frames      uint64
	StaleFrames uint64
	Recreations int
	Images      []ImageStats
	LastFrame   time.Duration
	CurrentSlot int
}

func (s Stats) clone() Stats {
	s.Images = append([]ImageStats(nil), s.Images...)
	return s
}
