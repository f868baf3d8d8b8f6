package testutil

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jbweber/homelab/gamestore/internal/config"
)

// NewTestDSN returns a DSN for a fresh sqlite file under t.TempDir().
// File databases let concurrent connections see one another's commits,
// which shared-cache memory databases only do with table locking.
func NewTestDSN(t *testing.T) string {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return config.BuildDSN(filepath.Join(t.TempDir(), name+".db"), 5*time.Second)
}
