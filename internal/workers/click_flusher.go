// Package workers contains the background processes that run alongside the
// HTTP server.
package workers

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/linkshort/linkshort/internal/cache"
	"github.com/linkshort/linkshort/internal/repository"
)

// ClickFlusher periodically drains the click counter into the link store.
// Between runs, redirects only touch Redis; this job is what eventually makes
// times_clicked catch up. If a run fails, whatever is still in Redis is
// simply retried on the next tick.
type ClickFlusher struct {
	linkRepo repository.LinkRepository
	clicks   cache.ClickCounter
	interval time.Duration
}

// NewClickFlusher creates and returns a new instance of ClickFlusher.
func NewClickFlusher(linkRepo repository.LinkRepository, clicks cache.ClickCounter, interval time.Duration) *ClickFlusher {
	return &ClickFlusher{
		linkRepo: linkRepo,
		clicks:   clicks,
		interval: interval,
	}
}

// Start runs the flush loop until the context is cancelled.
// A final flush is attempted on shutdown so pending counts are not left in
// Redis longer than necessary.
func (f *ClickFlusher) Start(ctx context.Context) {
	log.Printf("[FLUSH] Starting click flusher with interval of %v...", f.interval)
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.FlushOnce(ctx); err != nil {
				log.Printf("[FLUSH] ERROR during flush run: %v", err)
			}
		case <-ctx.Done():
			log.Println("[FLUSH] Stopping click flusher, running final flush...")
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := f.FlushOnce(flushCtx); err != nil {
				log.Printf("[FLUSH] ERROR during final flush: %v", err)
			}
			cancel()
			return
		}
	}
}

// FlushOnce drains every pending counter into the link store.
// Each key is processed independently: one failing link must not abort the
// batch. Counters for links that no longer exist are discarded.
func (f *ClickFlusher) FlushOnce(ctx context.Context) error {
	linkIDs, err := f.clicks.PendingLinkIDs(ctx)
	if err != nil {
		return err
	}

	if len(linkIDs) == 0 {
		return nil
	}

	flushed := 0
	for _, linkID := range linkIDs {
		if err := f.flushLink(ctx, linkID); err != nil {
			log.Printf("[FLUSH] ERROR flushing link %s: %v", linkID, err)
			continue
		}
		flushed++
	}

	log.Printf("[FLUSH] Flushed pending clicks for %d/%d link(s).", flushed, len(linkIDs))
	return nil
}

// flushLink moves the pending count of a single link into the database.
func (f *ClickFlusher) flushLink(ctx context.Context, linkID string) error {
	link, err := f.linkRepo.FindByID(linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The link was deleted (or never existed); its pending clicks
			// have nowhere to go, so clear the counter and move on.
			return f.clicks.Remove(ctx, linkID)
		}
		return err
	}

	count, err := f.clicks.TakeCount(ctx, linkID)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	link.TimesClicked += count
	if err := f.linkRepo.Update(link); err != nil {
		// The count was already taken from Redis; losing it here is the
		// accepted trade-off of an approximate counter.
		return err
	}
	return nil
}
