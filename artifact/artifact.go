package artifact

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ericrobolson/heimdall/errors"
)

// ShadowMarker is inserted before the extension to derive the shadow path.
const ShadowMarker = "_updated"

// ShadowPath derives the private copy's path from the canonical path:
// same directory, same extension, marker before the extension.
//
//	plugin.wasm -> plugin_updated.wasm
func ShadowPath(canonical string) string {
	dir := filepath.Dir(canonical)
	base := filepath.Base(canonical)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, name+ShadowMarker+ext)
}

// Clone copies the canonical artifact to its shadow path, overwriting any
// previous shadow, and returns the shadow path together with the canonical
// file's modification time.
//
// The timestamp is read AFTER the copy completes so it never describes a
// version newer than the bytes actually captured.
func Clone(canonical string) (shadow string, mtime time.Time, err error) {
	shadow = ShadowPath(canonical)

	if err := copyFile(canonical, shadow); err != nil {
		return "", time.Time{}, errors.Copy(canonical, shadow, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", time.Time{}, errors.Poll(canonical, err)
	}

	return shadow, info.ModTime(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
