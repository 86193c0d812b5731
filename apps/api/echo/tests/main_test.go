package tests

import (
	"os"
	"testing"

	"github.com/ues-sigs/guarderia/core"
	appfs "github.com/ues-sigs/guarderia/fs"
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	core.SetTemplateFS(appfs.FS)

	os.Exit(m.Run())
}
