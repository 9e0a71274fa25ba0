// ABOUTME: Builds the CRM service for the configured backend
// ABOUTME: Opens Google Sheets with a service account or the local SQLite workbook
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/harperreed/leadsheet/config"
	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/db"
	"github.com/harperreed/leadsheet/gsheets"
	"github.com/harperreed/leadsheet/workbook"
)

// OpenService connects the configured backend and returns the service plus
// a function releasing the backend.
func OpenService(ctx context.Context, cfg *config.Config, logger *log.Logger) (*crm.Service, func() error, error) {
	backend, err := cfg.ResolveBackend()
	if err != nil {
		return nil, nil, err
	}

	var drive workbook.Drive
	closer := func() error { return nil }
	switch backend {
	case config.BackendGoogle:
		client, err := gsheets.New(ctx, cfg.CredentialsFile, cfg.Subject)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Google: %w", err)
		}
		drive = client
		logger.Debug("using Google Sheets backend", "folder", cfg.FolderID)
	default:
		if cfg.Backend == config.BackendAuto {
			logger.Warn("Google credentials not set, using local workbook", "path", cfg.LocalDB)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.LocalDB), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		database, err := db.OpenDatabase(cfg.LocalDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local workbook: %w", err)
		}
		drive = db.NewStore(database)
		closer = database.Close
	}

	svc := crm.NewService(
		crm.NewResolver(drive, cfg.Settings(backend)),
		crm.WithLogger(logger),
	)
	return svc, closer, nil
}
