package handlers

import (
	"net/http"
	"time"
)

// CountdownHandler reports how long the couple has been together and how far
// away the next anniversary is.
type CountdownHandler struct {
	Anniversary time.Time
	NowFunc     func() time.Time
}

// Get handles GET /api/v1/countdown.
func (h CountdownHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if h.Anniversary.IsZero() {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "anniversary date not configured"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, computeCountdown(h.Anniversary, h.now()))
}

func (h CountdownHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type countdownResponse struct {
	Anniversary     string `json:"anniversary"`
	DaysTogether    int    `json:"daysTogether"`
	YearsTogether   int    `json:"yearsTogether"`
	NextAnniversary string `json:"nextAnniversary"`
	DaysUntilNext   int    `json:"daysUntilNext"`
}

// computeCountdown works on whole calendar days in UTC. The anniversary day
// itself counts as zero days until the next one.
func computeCountdown(anniversary, now time.Time) countdownResponse {
	anniversary = truncateDay(anniversary)
	today := truncateDay(now)

	days := int(today.Sub(anniversary).Hours() / 24)
	if days < 0 {
		days = 0
	}

	years := today.Year() - anniversary.Year()
	if !reachedThisYear(anniversary, today) {
		years--
	}
	if years < 0 {
		years = 0
	}

	next := time.Date(today.Year(), anniversary.Month(), anniversary.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, anniversary.Month(), anniversary.Day(), 0, 0, 0, 0, time.UTC)
	}

	return countdownResponse{
		Anniversary:     anniversary.Format("2006-01-02"),
		DaysTogether:    days,
		YearsTogether:   years,
		NextAnniversary: next.Format("2006-01-02"),
		DaysUntilNext:   int(next.Sub(today).Hours() / 24),
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func reachedThisYear(anniversary, today time.Time) bool {
	if today.Month() != anniversary.Month() {
		return today.Month() > anniversary.Month()
	}
	return today.Day() >= anniversary.Day()
}
