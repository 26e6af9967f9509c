package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/linkshort/linkshort/internal/repository"
)

// UrlMonitor manages periodic monitoring of link destinations to check their
// accessibility. It maintains a state map to track status changes and log
// when a destination goes down or comes back.
type UrlMonitor struct {
	linkRepo    repository.LinkRepository
	interval    time.Duration
	knownStates map[string]bool // link id -> accessible/not accessible on last check
	mu          sync.Mutex      // protects concurrent access to knownStates
	httpClient  *http.Client
}

// NewUrlMonitor creates and returns a new instance of UrlMonitor.
// interval determines how frequently destinations will be checked.
func NewUrlMonitor(linkRepo repository.LinkRepository, interval time.Duration) *UrlMonitor {
	return &UrlMonitor{
		linkRepo:    linkRepo,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the periodic monitoring loop until the context is cancelled.
func (m *UrlMonitor) Start(ctx context.Context) {
	log.Printf("[MONITOR] Starting URL monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Execute an immediate check on startup before waiting for the first tick
	m.checkUrls()

	for {
		select {
		case <-ticker.C:
			m.checkUrls()
		case <-ctx.Done():
			log.Println("[MONITOR] Stopping URL monitor.")
			return
		}
	}
}

// checkUrls performs a status check on every active link's current destination.
// It compares the current state with the previous one and logs any changes.
func (m *UrlMonitor) checkUrls() {
	links, err := m.linkRepo.FindAllActive()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving links for monitoring: %v", err)
		return
	}

	for _, link := range links {
		currentState := m.isUrlAccessible(link.CurrentURL)

		m.mu.Lock()
		previousState, exists := m.knownStates[link.ID]
		m.knownStates[link.ID] = currentState
		m.mu.Unlock()

		if !exists {
			log.Printf("[MONITOR] Initial state for link %s (%s): %s",
				link.Hash, link.CurrentURL, formatState(currentState))
			continue
		}

		if currentState != previousState {
			log.Printf("[MONITOR] Link %s (%s) changed from %s to %s!",
				link.Hash, link.CurrentURL, formatState(previousState), formatState(currentState))
		}
	}
}

// isUrlAccessible performs an HTTP HEAD request to check if a URL is accessible.
// Returns true if the URL responds with a 2xx or 3xx status code.
func (m *UrlMonitor) isUrlAccessible(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// HEAD is enough since we don't need the response body
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		log.Printf("[MONITOR] Error creating request for URL '%s': %v", url, err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// formatState converts the boolean accessibility state to a readable string.
func formatState(accessible bool) string {
	if accessible {
		return "ACCESSIBLE"
	}
	return "INACCESSIBLE"
}
