package games

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/everkeep/backend/internal/markers"
)

// challenges is the daily couple challenge pool. Order matters only for the
// repeat-avoidance step, which nudges the pick forward by one slot.
var challenges = []string{
	"Cook dinner together tonight, no recipes allowed",
	"Recreate the photo from your first date",
	"Write each other a three-line poem before bed",
	"Swap phones for an hour and curate each other's playlists",
	"Plan an imaginary trip with a full itinerary",
	"Slow dance in the kitchen to the first song that plays",
	"Tell each other a story from before you met",
	"Draw a portrait of each other in under five minutes",
	"Make a time capsule note to open next anniversary",
	"Find the oldest photo of the two of you and reminisce",
	"Teach each other something you are good at",
	"Have a conversation using only questions",
	"Build a blanket fort and watch one episode inside it",
	"Compliment battle: alternate until someone laughs",
}

// Picker chooses the couple challenge of the day. The pick is a pure function
// of the date, so both partners see the same challenge all day, and the last
// served pick is recorded so two consecutive days never repeat.
type Picker struct {
	markers *markers.Store
	now     func() time.Time
}

// NewPicker constructs a Picker recording its state in the marker store.
func NewPicker(store *markers.Store) *Picker {
	return &Picker{markers: store, now: time.Now}
}

// Today returns the challenge for the current date.
func (p *Picker) Today(ctx context.Context) (string, error) {
	if len(challenges) == 0 {
		return "", fmt.Errorf("no challenges configured")
	}

	day := p.now().UTC().Format("2006-01-02")

	if prevDay, prevIdx, ok := p.lastServed(ctx); ok && prevDay == day {
		return challenges[prevIdx%len(challenges)], nil
	} else if ok {
		idx := dateIndex(day)
		if idx == prevIdx {
			idx = (idx + 1) % len(challenges)
		}
		return p.record(ctx, day, idx)
	}

	return p.record(ctx, day, dateIndex(day))
}

func (p *Picker) record(ctx context.Context, day string, idx int) (string, error) {
	value := fmt.Sprintf("%s|%d", day, idx)
	if err := p.markers.Set(ctx, markers.LastChallenge, value); err != nil {
		return "", err
	}
	return challenges[idx], nil
}

// lastServed decodes the lastChallenge marker. A missing or malformed marker
// reads as never served.
func (p *Picker) lastServed(ctx context.Context) (day string, idx int, ok bool) {
	value, found := p.markers.Get(ctx, markers.LastChallenge)
	if !found {
		return "", 0, false
	}

	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return "", 0, false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 || idx >= len(challenges) {
		return "", 0, false
	}
	return parts[0], idx, true
}

func dateIndex(day string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return int(h.Sum32()) % len(challenges)
}
