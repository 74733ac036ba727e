package tilemap

import "time"

// DefaultFrameDuration is the display time of one animation frame.
const DefaultFrameDuration = 150 * time.Millisecond

// FrameTimer reports how long the frame at an image path stays on screen.
// ImageCache implements it for decoded sprite frames.
type FrameTimer interface {
	FrameDuration(path string) (time.Duration, bool)
}

// Animator steps the animated tiles of a map. Each tile keeps its own
// clock, started the first time the tile is seen on screen.
type Animator struct {
	Duration time.Duration // frame time when Timer has none
	Timer    FrameTimer    // optional per-frame times

	last map[*Tile]time.Time
	now  func() time.Time
}

// NewAnimator returns an animator changing frames every d. A non-positive
// d uses DefaultFrameDuration.
func NewAnimator(d time.Duration) *Animator {
	if d <= 0 {
		d = DefaultFrameDuration
	}
	return &Animator{Duration: d, now: time.Now}
}

// Update advances every animated basic tile found on screen by the last
// render for the time elapsed since it last changed. Off-screen tiles keep
// their frame and restart their clock when they come back. It returns the
// number of tiles whose frame changed.
func (a *Animator) Update(m *Map) (int, error) {
	now := a.now()
	seen := make(map[*Tile]time.Time, len(a.last))
	changed := 0
	for _, t := range m.onScreen[Basic] {
		if !t.Animated() || t.FrameCount() == 0 {
			continue
		}
		last, ok := a.last[t]
		if !ok {
			seen[t] = now
			continue
		}
		next, stepped, err := a.step(t, last, now)
		if err != nil {
			return changed, err
		}
		seen[t] = next
		if stepped {
			changed++
		}
	}
	a.last = seen
	return changed, nil
}

// step advances t from the clock value last to now and returns the new
// clock value.
func (a *Animator) step(t *Tile, last, now time.Time) (time.Time, bool, error) {
	elapsed := now.Sub(last)
	// After a long stall only the resulting frame matters.
	if cycle := a.cycle(t); elapsed >= cycle {
		skip := elapsed / cycle * cycle
		last = last.Add(skip)
		elapsed -= skip
	}

	stepped := false
	for d := a.frameDuration(t, t.frame); elapsed >= d; d = a.frameDuration(t, t.frame) {
		if _, err := t.NextFrame(); err != nil {
			return last, stepped, err
		}
		last = last.Add(d)
		elapsed -= d
		stepped = true
	}
	return last, stepped, nil
}

func (a *Animator) cycle(t *Tile) time.Duration {
	var total time.Duration
	for i := 0; i < t.FrameCount(); i++ {
		total += a.frameDuration(t, i)
	}
	return total
}

func (a *Animator) frameDuration(t *Tile, frame int) time.Duration {
	if a.Timer != nil && frame < len(t.framePaths) {
		if d, ok := a.Timer.FrameDuration(t.framePaths[frame]); ok && d > 0 {
			return d
		}
	}
	if a.Duration <= 0 {
		return DefaultFrameDuration
	}
	return a.Duration
}
