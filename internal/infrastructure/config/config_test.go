package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tododash/core/internal/domain/entities"
	"github.com/tododash/core/internal/infrastructure/config"
)

// Load goes through the process-wide viper instance, so these tests
// must not run in parallel.

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
todoist:
  access_token: file-token
dashboard:
  filters:
    - name: Work
      config:
        sortType: dueDateAsc
        maximumEntries: 10
        showProjectName: true
      criteria:
        - projects: ["Work"]
          withinDays: 7
    - name: Inbox
      criteria:
        - noDate: only
`

func TestLoadAppliesDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := config.Load(writeConfigFile(t, validConfig))
	assert.Nil(err)

	assert.Equal("file-token", cfg.Todoist.AccessToken)
	assert.Equal("https://api.todoist.com/sync", cfg.Todoist.APIBase)
	assert.Equal("v8", cfg.Todoist.APIVersion)
	assert.Equal(8080, cfg.Server.Port)
	assert.Equal(10*time.Minute, cfg.Dashboard.UpdateInterval)
	assert.Equal(24, cfg.Dashboard.TimeFormat)
	assert.Equal("en", cfg.Dashboard.Language)
	assert.True(cfg.Metrics.Enabled)
	assert.False(cfg.Snapshot.Enabled)
}

func TestLoadParsesFilterGroups(t *testing.T) {
	assert := assert.New(t)

	cfg, err := config.Load(writeConfigFile(t, validConfig))
	assert.Nil(err)

	assert.Len(cfg.Dashboard.Filters, 2)

	work := cfg.Dashboard.Filters[0]
	assert.Equal("Work", work.Name)
	assert.Equal(entities.SortDueDateAsc, work.Config.SortType)
	assert.Equal(10, work.Config.MaximumEntries)
	assert.True(work.Config.ShowProjectName)
	assert.Len(work.Criteria, 1)
	assert.Equal([]string{"Work"}, work.Criteria[0].Projects)
	assert.Equal(7, work.Criteria[0].WithinDays)

	assert.Equal(entities.NoDateOnly, cfg.Dashboard.Filters[1].Criteria[0].NoDate)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("TODOIST_ACCESS_TOKEN", "env-token")
	t.Setenv("DASHBOARD_UPDATE_INTERVAL", "5m")

	cfg, err := config.Load(writeConfigFile(t, validConfig))
	assert.Nil(err)
	assert.Equal("env-token", cfg.Todoist.AccessToken)
	assert.Equal(5*time.Minute, cfg.Dashboard.UpdateInterval)
}

func TestLoadRequiresAccessToken(t *testing.T) {
	assert := assert.New(t)

	content := `
dashboard:
  filters:
    - name: Work
      criteria:
        - projects: ["Work"]
`
	_, err := config.Load(writeConfigFile(t, content))
	assert.Error(err)
}

func TestLoadRequiresFilterGroups(t *testing.T) {
	assert := assert.New(t)

	content := `
todoist:
  access_token: file-token
`
	_, err := config.Load(writeConfigFile(t, content))
	assert.ErrorContains(err, "at least one filter group")
}

func TestLoadRejectsDuplicateGroupNames(t *testing.T) {
	assert := assert.New(t)

	content := `
todoist:
  access_token: file-token
dashboard:
  filters:
    - name: Work
      criteria:
        - projects: ["Work"]
    - name: Work
      criteria:
        - noDate: only
`
	_, err := config.Load(writeConfigFile(t, content))
	assert.ErrorContains(err, "duplicate filter group name")
}

func TestLoadRejectsInvalidTimeFormat(t *testing.T) {
	assert := assert.New(t)

	content := validConfig + `
  time_format: 13
`
	_, err := config.Load(writeConfigFile(t, content))
	assert.Error(err)
}

func TestSnapshotDSN(t *testing.T) {
	assert := assert.New(t)

	cfg := config.SnapshotConfig{
		Host:     "db.local",
		Port:     5432,
		User:     "dash",
		Password: "secret",
		Name:     "tododash",
		SSLMode:  "disable",
	}
	assert.Equal("host=db.local port=5432 user=dash password=secret dbname=tododash sslmode=disable", cfg.GetDSN())
}
