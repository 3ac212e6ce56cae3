package game

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// TagValue is one runtime tag of an entity snapshot.
type TagValue struct {
	Tag   string
	Value int
}

// EntitySnapshot is a frozen copy of an entity.
type EntitySnapshot struct {
	ID          int
	CardID      string
	Kind        string
	OrderOfPlay int
	Owner       string
	Zone        string
	Destroyed   bool
	Tags        []TagValue // sorted by tag name
}

// PlayerSnapshot is a frozen copy of a player and its zones.
type PlayerSnapshot struct {
	ID        string
	Nickname  string
	Fatigue   int
	Hero      EntitySnapshot
	Weapon    *EntitySnapshot
	Deck      []EntitySnapshot
	Hand      []EntitySnapshot
	Field     []EntitySnapshot
	Graveyard []EntitySnapshot
}

// Snapshot is a deterministic capture of a game, used for replays and for
// detecting divergent states.
type Snapshot struct {
	GameID        string
	Turn          int
	Step          string
	State         string
	CurrentPlayer string
	Winner        string
	Players       []PlayerSnapshot
	DeadMinions   []int // entity handles in order of play
	Action        string
	Timestamp     time.Time
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		GameID:        g.id,
		Turn:          g.Turn(),
		Step:          g.Step().String(),
		State:         g.state.String(),
		CurrentPlayer: g.CurrentPlayer().id,
		Winner:        g.winner,
		Timestamp:     time.Now(),
	}
	for _, order := range g.deadOrders() {
		s.DeadMinions = append(s.DeadMinions, int(g.deadMinions[order]))
	}
	for _, p := range g.players {
		ps := PlayerSnapshot{
			ID:        p.id,
			Nickname:  p.nickname,
			Fatigue:   p.numCardAfterExhaust,
			Hero:      snapshotEntity(p.hero),
			Deck:      snapshotZone(p.deck),
			Hand:      snapshotZone(p.hand),
			Field:     snapshotZone(p.field),
			Graveyard: snapshotZone(p.graveyard),
		}
		if w := p.Weapon(); w != nil {
			ws := snapshotEntity(w)
			ps.Weapon = &ws
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

// Checksum returns the checksum of the current game state.
func (g *Game) Checksum() string {
	return g.Snapshot().Checksum()
}

func snapshotZone(z *Zone) []EntitySnapshot {
	out := make([]EntitySnapshot, 0, z.Len())
	for _, e := range z.entities {
		out = append(out, snapshotEntity(e))
	}
	return out
}

func snapshotEntity(e *Entity) EntitySnapshot {
	es := EntitySnapshot{
		ID:          int(e.id),
		CardID:      e.CardID(),
		Kind:        e.kind.String(),
		OrderOfPlay: e.orderOfPlay,
		Destroyed:   e.destroyed,
	}
	if e.owner != nil {
		es.Owner = e.owner.id
	}
	if e.zone != nil {
		es.Zone = e.zone.kind.String()
	}
	for tag, v := range e.tags {
		if v == 0 {
			continue
		}
		es.Tags = append(es.Tags, TagValue{Tag: tag.String(), Value: v})
	}
	sort.Slice(es.Tags, func(i, j int) bool { return es.Tags[i].Tag < es.Tags[j].Tag })
	return es
}

// Checksum returns the hex blake2b-256 digest of the canonical representation.
// The timestamp and the action label do not contribute.
func (s *Snapshot) Checksum() string {
	sum := blake2b.Sum256([]byte(s.canonical()))
	return hex.EncodeToString(sum[:])
}

// VerifyChecksum reports whether the snapshot still matches expected.
func (s *Snapshot) VerifyChecksum(expected string) bool {
	return s.Checksum() == expected
}

func (s *Snapshot) canonical() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%s|%s|%s\n", s.GameID, s.Turn, s.Step, s.State, s.CurrentPlayer, s.Winner)
	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d\n", p.ID, p.Nickname, p.Fatigue)
		writeEntity(&buf, "HERO", p.Hero)
		if p.Weapon != nil {
			writeEntity(&buf, "WEAPON", *p.Weapon)
		}
		for _, zone := range []struct {
			name     string
			entities []EntitySnapshot
		}{
			{"DECK", p.Deck},
			{"HAND", p.Hand},
			{"PLAY", p.Field},
			{"GRAVEYARD", p.Graveyard},
		} {
			for _, e := range zone.entities {
				writeEntity(&buf, zone.name, e)
			}
		}
	}
	ids := make([]string, len(s.DeadMinions))
	for i, id := range s.DeadMinions {
		ids[i] = fmt.Sprint(id)
	}
	buf.WriteString("DEAD:" + strings.Join(ids, ",") + "\n")
	return buf.String()
}

func writeEntity(buf *strings.Builder, label string, e EntitySnapshot) {
	fmt.Fprintf(buf, "  %s:%d|%s|%s|%d|%s|%s|%t", label, e.ID, e.CardID, e.Kind, e.OrderOfPlay, e.Owner, e.Zone, e.Destroyed)
	for _, t := range e.Tags {
		fmt.Fprintf(buf, "|%s=%d", t.Tag, t.Value)
	}
	buf.WriteString("\n")
}

// SerializeToBytes gob-encodes the snapshot.
func (s *Snapshot) SerializeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeSnapshot decodes a snapshot produced by SerializeToBytes.
func DeserializeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// ValidateSerializationRoundtrip checks that a snapshot survives encoding
// without changing its checksum.
func ValidateSerializationRoundtrip(s *Snapshot) error {
	data, err := s.SerializeToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	decoded, err := DeserializeSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to deserialize: %w", err)
	}
	if want, got := s.Checksum(), decoded.Checksum(); want != got {
		return fmt.Errorf("checksum mismatch: original=%s, deserialized=%s", want, got)
	}
	return nil
}
