// ABOUTME: Tests for configuration loading and backend selection
// ABOUTME: Uses explicit environment maps and temp dotenv files

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadsheet/crm"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, crm.DefaultDocumentName, cfg.DocumentName)
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "crm.db", filepath.Base(cfg.LocalDB))
}

func TestLoadEnvironmentWinsOverDotenv(t *testing.T) {
	file := writeEnvFile(t, "GOOGLE_DRIVE_FOLDER_ID=from-file\nCRM_LOG_LEVEL=debug\n")
	cfg, err := load(map[string]string{"GOOGLE_DRIVE_FOLDER_ID": "from-env"}, file, "/does/not/exist/.env")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.FolderID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestResolveBackend(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    Backend
		wantErr error
	}{
		{"auto without credentials", Config{Backend: BackendAuto}, BackendLocal, nil},
		{"auto with credentials", Config{Backend: BackendAuto, CredentialsFile: "key.json", FolderID: "f"}, BackendGoogle, nil},
		{"google without folder", Config{Backend: BackendGoogle, CredentialsFile: "key.json"}, "", crm.ErrNotConfigured},
		{"explicit local", Config{Backend: BackendLocal, CredentialsFile: "key.json", FolderID: "f"}, BackendLocal, nil},
		{"unknown", Config{Backend: "s3"}, "", crm.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ResolveBackend()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettings(t *testing.T) {
	cfg := Config{DocumentName: "CRM"}
	assert.Equal(t, crm.Settings{DocumentName: "CRM", FolderID: LocalFolder}, cfg.Settings(BackendLocal))
	assert.Equal(t, crm.Settings{DocumentName: "CRM"}, cfg.Settings(BackendGoogle))
}

func TestLevelFallsBackToInfo(t *testing.T) {
	cfg := Config{LogLevel: "loud"}
	assert.Equal(t, log.InfoLevel, cfg.Level())
}
