package match

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ReplayFrame is one recorded board state, taken after a successful
// action from the human player's perspective.
type ReplayFrame struct {
	Time  time.Time
	State GameView
}

// Replay records sequential board snapshots for after-game playback.
type Replay struct {
	GameID       string
	Frames       []ReplayFrame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay for one game.
func NewReplay(gameID string) *Replay {
	return &Replay{GameID: gameID}
}

// Record appends a frame.
func (r *Replay) Record(view GameView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, ReplayFrame{Time: time.Now(), State: view})
}

// Start rewinds playback to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the frame under the cursor and advances, or nil at the
// end.
func (r *Replay) Next() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex < len(r.Frames) {
		frame := &r.Frames[r.CurrentIndex]
		r.CurrentIndex++
		return frame
	}
	return nil
}

// Previous steps the cursor back and returns that frame, or nil at the
// beginning.
func (r *Replay) Previous() *ReplayFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return &r.Frames[r.CurrentIndex]
	}
	return nil
}

// Len returns the number of recorded frames.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Frames)
}

// SaveToFile writes the replay as gzipped gob under directory.
func (r *Replay) SaveToFile(directory string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("create replay directory: %w", err)
	}
	path := filepath.Join(directory, r.GameID+".replay.gz")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	defer zw.Close()

	payload := struct {
		GameID string
		Frames []ReplayFrame
	}{GameID: r.GameID, Frames: r.Frames}
	if err := gob.NewEncoder(zw).Encode(payload); err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay previously written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	path := filepath.Join(directory, gameID+".replay.gz")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}
	defer zr.Close()

	var payload struct {
		GameID string
		Frames []ReplayFrame
	}
	if err := gob.NewDecoder(zr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &Replay{GameID: payload.GameID, Frames: payload.Frames}, nil
}
