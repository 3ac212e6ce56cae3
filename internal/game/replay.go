package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const replayVersion = 2

// Frame is one recorded step of a replay: the state after an action and the
// checksum taken when it was recorded.
type Frame struct {
	Snapshot *Snapshot
	Checksum string
}

// Replay is a recorded game with sequential state frames.
type Replay struct {
	GameID       string
	Frames       []Frame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(gameID string) *Replay {
	return &Replay{GameID: gameID}
}

// Record appends a frame for snapshot, labelled with the action that led to it.
func (r *Replay) Record(snapshot *Snapshot, action string) {
	if snapshot == nil {
		return
	}
	snapshot.Action = action

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Frames = append(r.Frames, Frame{Snapshot: snapshot, Checksum: snapshot.Checksum()})
}

// Start rewinds to the first frame.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CurrentIndex = 0
}

// Next returns the frame at the cursor and advances it, or nil at the end.
func (r *Replay) Next() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Frames) {
		s := r.Frames[r.CurrentIndex].Snapshot
		r.CurrentIndex++
		return s
	}
	return nil
}

// Previous steps the cursor back and returns that frame, or nil at the start.
func (r *Replay) Previous() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Frames[r.CurrentIndex].Snapshot
	}
	return nil
}

// Skip moves the cursor by count frames, clamped to the recording.
func (r *Replay) Skip(count int) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Frames) == 0 {
		return nil
	}
	r.CurrentIndex = min(max(r.CurrentIndex+count, 0), len(r.Frames)-1)
	return r.Frames[r.CurrentIndex].Snapshot
}

// Size returns the number of frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Frames)
}

// At returns the snapshot of frame index, or nil.
func (r *Replay) At(index int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index >= 0 && index < len(r.Frames) {
		return r.Frames[index].Snapshot
	}
	return nil
}

// Verify recomputes every frame checksum and returns the index of the first
// frame that no longer matches, or -1.
func (r *Replay) Verify() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, f := range r.Frames {
		if !f.Snapshot.VerifyChecksum(f.Checksum) {
			return i
		}
	}
	return -1
}

type replayHeader struct {
	GameID     string
	SavedAt    time.Time
	Version    int
	FrameCount int
}

func replayPath(directory, gameID string) string {
	return filepath.Join(directory, gameID+".replay")
}

// SaveToFile writes the replay as a gzipped gob stream to
// <directory>/<game id>.replay. The stream goes to a temporary file that is
// renamed into place, so a failed save leaves no partial replay behind.
func (r *Replay) SaveToFile(directory string) (err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.CreateTemp(directory, r.GameID+".replay.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	zw := gzip.NewWriter(file)
	enc := gob.NewEncoder(zw)

	header := replayHeader{GameID: r.GameID, SavedAt: time.Now(), Version: replayVersion, FrameCount: len(r.Frames)}
	if err := enc.Encode(&header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	for i := range r.Frames {
		if err := enc.Encode(&r.Frames[i]); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(file.Name(), replayPath(directory, r.GameID)); err != nil {
		return fmt.Errorf("failed to move replay into place: %w", err)
	}
	return nil
}

// LoadReplayFromFile reads a replay written by SaveToFile.
func LoadReplayFromFile(directory, gameID string) (*Replay, error) {
	file, err := os.Open(replayPath(directory, gameID))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)
	var header replayHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version: %d", header.Version)
	}

	replay := NewReplay(header.GameID)
	for i := 0; i < header.FrameCount; i++ {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		replay.Frames = append(replay.Frames, f)
	}
	return replay, nil
}

// ReplayRecorder keeps the replays of running games and writes them to disk
// when a game ends.
type ReplayRecorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay
	saveDir string
}

// NewReplayRecorder creates a recorder saving into saveDir.
func NewReplayRecorder(logger *zap.Logger, saveDir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		saveDir: saveDir,
	}
}

// StartRecording begins recording gameID.
func (rr *ReplayRecorder) StartRecording(gameID string) {
	rr.mu.Lock()
	rr.replays[gameID] = NewReplay(gameID)
	rr.mu.Unlock()

	rr.logger.Info("started replay recording", zap.String("game_id", gameID))
}

// IsRecording reports whether gameID is being recorded.
func (rr *ReplayRecorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	_, ok := rr.replays[gameID]
	return ok
}

// Record appends a snapshot of g if it is being recorded.
func (rr *ReplayRecorder) Record(g *Game, action string) {
	rr.mu.RLock()
	replay := rr.replays[g.ID()]
	rr.mu.RUnlock()
	if replay == nil {
		return
	}

	replay.Record(g.Snapshot(), action)
	rr.logger.Debug("recorded replay frame",
		zap.String("game_id", g.ID()),
		zap.String("action", action),
		zap.Int("frame_count", replay.Size()),
	)
}

// Replay returns the in-memory replay of gameID.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	replay, ok := rr.replays[gameID]
	return replay, ok
}

// Save writes the replay of gameID to disk and forgets it.
func (rr *ReplayRecorder) Save(gameID string) error {
	rr.mu.Lock()
	replay, ok := rr.replays[gameID]
	delete(rr.replays, gameID)
	rr.mu.Unlock()

	if !ok {
		return fmt.Errorf("no replay found for game %s", gameID)
	}
	if err := replay.SaveToFile(rr.saveDir); err != nil {
		return fmt.Errorf("failed to save replay: %w", err)
	}

	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", replay.Size()),
		zap.String("directory", rr.saveDir),
	)
	return nil
}

// Load reads the saved replay of gameID.
func (rr *ReplayRecorder) Load(gameID string) (*Replay, error) {
	replay, err := LoadReplayFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}
	rr.logger.Info("loaded replay from disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", replay.Size()),
	)
	return replay, nil
}

// Discard forgets the replay of gameID without saving it.
func (rr *ReplayRecorder) Discard(gameID string) {
	rr.mu.Lock()
	delete(rr.replays, gameID)
	rr.mu.Unlock()
}
