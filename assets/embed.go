// Package assets loads the engine's embedded shaders and on-disk textures.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/bootzin/BootEngine-sub000/resource"
	"github.com/bootzin/BootEngine-sub000/shader"
)

//go:embed shaders
var shadersFS embed.FS

// Shaders returns the embedded shader tree.
func Shaders() fs.FS {
	return shadersFS
}

// ShaderPath returns the embedded path of a shader for a graphics backend.
func ShaderPath(backend, name string) string {
	return path.Join("shaders", backend, name+".shader")
}

// LoadShaderSet parses the embedded shader name for backend, creates it on
// dev and registers it in cache under name.
func LoadShaderSet(dev gfx.Device, cache *resource.Cache[gfx.ShaderSet], backend, name string) (gfx.ShaderSet, error) {
	stages, err := shader.Load(shadersFS, ShaderPath(backend, name))
	if err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	set, err := dev.CreateShaderSet(name, stages)
	if err != nil {
		return nil, fmt.Errorf("assets: create shader set %q: %w", name, err)
	}
	if err := cache.Add(name, set); err != nil {
		set.Dispose()
		return nil, fmt.Errorf("assets: %w", err)
	}
	return set, nil
}

// cleanAssetPath turns a path into the slash-separated name used as the cache
// key, relative to the assets directory when the path lies inside it.
func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(filepath.Clean(p))
	if filepath.IsAbs(p) {
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return s[idx+len("/assets/"):]
		}
		return path.Base(s)
	}
	return strings.TrimPrefix(s, "assets/")
}
