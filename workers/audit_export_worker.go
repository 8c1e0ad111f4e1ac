// workers/audit_export_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/UziB26/leagueladder-sub000/models"
	"gorm.io/gorm"
)

// AuditExportWorker ships dispute-resolution audit records to the
// administrative-action sink. Resolutions are committed locally first and
// exported here on a cadence, so resolving a dispute never waits on the sink.
type AuditExportWorker struct {
	db           *gorm.DB
	interval     time.Duration
	sinkURL      string // e.g., "http://localhost:8600"
	endpointPath string // e.g., "/api/v1/admin-actions"
	serviceToken string
	httpClient   *http.Client
}

func NewAuditExportWorker(db *gorm.DB, sinkBaseURL, endpointPath, serviceToken string) *AuditExportWorker {
	return &AuditExportWorker{
		db:           db,
		interval:     1 * time.Minute,
		sinkURL:      sinkBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *AuditExportWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Audit Export Worker (dispute_resolutions → admin sink)…")
	go w.run(ctx)
}

func (w *AuditExportWorker) run(ctx context.Context) {
	// Export any backlog right away
	if err := w.exportBatch(ctx); err != nil {
		log.Printf("⚠️ Initial audit export failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.exportBatch(ctx); err != nil {
				log.Printf("❌ Audit export batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Audit Export Worker stopped")
			return
		}
	}
}

// exportBatch POSTs unexported resolutions to the sink and marks the delivered
// ones. A sink failure leaves rows unexported; the next tick retries them.
func (w *AuditExportWorker) exportBatch(ctx context.Context) error {
	var resolutions []models.DisputeResolution
	err := w.db.Where("exported = ?", false).
		Order("created_at ASC").
		Limit(100).
		Find(&resolutions).Error
	if err != nil {
		return fmt.Errorf("failed to load unexported resolutions: %w", err)
	}
	if len(resolutions) == 0 {
		return nil
	}

	base, err := url.Parse(w.sinkURL)
	if err != nil {
		return fmt.Errorf("invalid audit sink URL '%s': %w", w.sinkURL, err)
	}
	finalURL := base.JoinPath(w.endpointPath).String()

	payload, err := json.Marshal(map[string]interface{}{
		"source":      "league-ladder",
		"resolutions": resolutions,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	log.Printf("[AUDIT] ➡️  POST %s (%d resolution(s))", finalURL, len(resolutions))

	req, err := http.NewRequestWithContext(ctx, "POST", finalURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to audit sink failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("audit sink non-2xx response: %d — %s", resp.StatusCode, string(body))
	}

	now := time.Now()
	ids := make([]string, len(resolutions))
	for i, r := range resolutions {
		ids[i] = r.ID
	}
	err = w.db.Model(&models.DisputeResolution{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"exported": true, "exported_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to mark resolutions exported: %w", err)
	}

	log.Printf("[AUDIT] ✅ Exported %d dispute resolution(s)", len(resolutions))
	return nil
}
