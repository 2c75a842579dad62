package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/ioccc-mirror/internal/config"
)

func TestResolve(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	noEnv := func(string) string { return "" }

	if !Resolve(config.ColorAlways, f, noEnv) {
		t.Error("always should enable colors")
	}
	if Resolve(config.ColorNever, f, noEnv) {
		t.Error("never should disable colors")
	}
	if Resolve(config.ColorAuto, f, noEnv) {
		t.Error("auto should disable colors for a regular file")
	}
	if Resolve(config.ColorAuto, nil, noEnv) {
		t.Error("auto should disable colors without a file")
	}
}

func TestSetAndPaint(t *testing.T) {
	t.Cleanup(func() { Set(false) })

	Set(false)
	if Enabled() || Paint(Red, "x") != "x" {
		t.Error("disabled colors should leave text untouched")
	}
	Set(true)
	if !Enabled() {
		t.Error("Enabled() should be true after Set(true)")
	}
	if got := Paint(Green, "ok"); got != "\033[1;92mok\033[0m" {
		t.Errorf("Paint = %q", got)
	}
}
