package app

import (
	"log"
	"time"

	"github.com/ayusman/pinchball/internal/store"
)

// openRecord starts a session row for this run. Without a store the run is
// not recorded.
func (a *App) openRecord() {
	if a.store == nil {
		return
	}
	rec := &store.Session{Mode: a.cfg.Mode.String()}
	if err := a.store.Sessions().Create(rec); err != nil {
		log.Printf("Failed to create session record: %v", err)
		return
	}
	a.record = rec
	a.pending = a.pending[:0]
}

// flushRecord writes the current counters and pending events. A non-nil
// ended closes the record.
func (a *App) flushRecord(ended *time.Time) {
	if a.record == nil {
		return
	}

	s := a.world.Session()
	rec := a.record
	rec.Mode = s.Mode.String()
	rec.Score = s.Score
	rec.Grabs = s.Stats.Grabs
	rec.Throws = s.Stats.Throws
	rec.Hits = s.Stats.Hits
	rec.Drops = s.Stats.Drops
	rec.Ticks = a.world.Ticks()
	rec.EndedAt = ended

	sessions := a.store.Sessions()
	if err := sessions.AddEvents(rec.ID, a.pending); err != nil {
		log.Printf("Failed to record events: %v", err)
	} else {
		a.pending = a.pending[:0]
	}
	if err := sessions.Update(rec); err != nil {
		log.Printf("Failed to update session record: %v", err)
	}
}

// closeRecord finalizes the session row and folds its score into best.
func (a *App) closeRecord() {
	if a.record == nil {
		return
	}
	now := time.Now()
	a.flushRecord(&now)
	log.Printf("Session %s ended: score %d", a.record.ID, a.record.Score)

	a.mu.Lock()
	a.best = max(a.best, a.record.Score)
	a.mu.Unlock()
	a.record = nil
}
