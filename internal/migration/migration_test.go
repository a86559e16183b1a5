package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	entries, err := fs.ReadDir(files, ".")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSourceReadsFirstVersion(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestNotificationDeliveryIsUnique(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)

	body, err := fs.ReadFile(files, "000002_payment_notifications.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE UNIQUE INDEX IF NOT EXISTS ux_payment_notifications_delivery_id")
}
