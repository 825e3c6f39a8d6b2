package service

import (
	"context"
	"fmt"
	"time"

	"github.com/coprra/coprra/internal/model"
)

// runOperation executes one heavy operation and returns its result payload.
// Operations respect ctx so an attempt timeout aborts the work.
func runOperation(ctx context.Context, op model.Operation, params map[string]string) (map[string]any, error) {
	switch op {
	case model.OpGenerateReport:
		return generateReport(ctx, params)
	case model.OpProcessImages:
		return processImages(ctx, params)
	case model.OpSyncData:
		return syncData(ctx)
	case model.OpSendBulkNotifications:
		return sendBulkNotifications(ctx, params)
	case model.OpUpdateStatistics:
		return updateStatistics(ctx)
	case model.OpCleanupOldData:
		return cleanupOldData(ctx)
	case model.OpExportData:
		return exportData(ctx, params)
	case model.OpImportData:
		return importData(ctx, params)
	default:
		return nil, fmt.Errorf("unknown operation: %q", op)
	}
}

// simulateWork blocks for d or until ctx is done.
func simulateWork(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func paramOr(params map[string]string, key, fallback string) string {
	if v, ok := params[key]; ok && v != "" {
		return v
	}
	return fallback
}

func generateReport(ctx context.Context, params map[string]string) (map[string]any, error) {
	if err := simulateWork(ctx, 2*time.Second); err != nil {
		return nil, err
	}
	format := paramOr(params, "format", "pdf")
	return map[string]any{
		"report_type":  paramOr(params, "type", "sales"),
		"format":       format,
		"rows":         1250,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func processImages(ctx context.Context, params map[string]string) (map[string]any, error) {
	if err := simulateWork(ctx, 3*time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"processed": 48,
		"skipped":   2,
		"quality":   paramOr(params, "quality", "high"),
	}, nil
}

func syncData(ctx context.Context) (map[string]any, error) {
	if err := simulateWork(ctx, 2*time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"synced_products": 320,
		"synced_offers":   1840,
		"synced_at":       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func sendBulkNotifications(ctx context.Context, params map[string]string) (map[string]any, error) {
	if err := simulateWork(ctx, 2*time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"channel": paramOr(params, "channel", "email"),
		"sent":    540,
		"failed":  3,
	}, nil
}

func updateStatistics(ctx context.Context) (map[string]any, error) {
	if err := simulateWork(ctx, time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"recalculated": []string{"price_averages", "category_counts", "store_rankings"},
		"updated_at":   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func cleanupOldData(ctx context.Context) (map[string]any, error) {
	if err := simulateWork(ctx, time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"deleted_price_changes": 112,
		"deleted_sessions":      75,
	}, nil
}

func exportData(ctx context.Context, params map[string]string) (map[string]any, error) {
	if err := simulateWork(ctx, 2*time.Second); err != nil {
		return nil, err
	}
	format := paramOr(params, "format", "csv")
	return map[string]any{
		"format":      format,
		"rows":        4096,
		"export_path": fmt.Sprintf("exports/products-%d.%s", time.Now().Unix(), format),
	}, nil
}

func importData(ctx context.Context, params map[string]string) (map[string]any, error) {
	if err := simulateWork(ctx, 3*time.Second); err != nil {
		return nil, err
	}
	return map[string]any{
		"source":   paramOr(params, "source", "upload"),
		"imported": 230,
		"rejected": 4,
	}, nil
}
