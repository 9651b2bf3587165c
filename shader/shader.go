// Package shader splits multi-stage shader sources. A source file holds one
// or more sections, each introduced by a "#type <stage>" line.
package shader

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bootzin/BootEngine-sub000/gfx"
)

var (
	ErrUnknownStage    = errors.New("shader: unknown stage")
	ErrMalformedSource = errors.New("shader: malformed source")
)

const typeToken = "#type"

// StageFromToken maps a stage token to a pipeline stage. "pixel" is an alias
// of "fragment".
func StageFromToken(tok string) (gfx.Stage, error) {
	switch tok {
	case "vertex":
		return gfx.StageVertex, nil
	case "fragment", "pixel":
		return gfx.StageFragment, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStage, tok)
	}
}

// Parse splits src into one source blob per stage.
func Parse(src string) (map[gfx.Stage][]byte, error) {
	out := make(map[gfx.Stage][]byte)
	var (
		cur     gfx.Stage
		inStage bool
		body    strings.Builder
		lineNo  int
	)
	flush := func() {
		if inStage {
			out[cur] = []byte(body.String())
		}
		body.Reset()
	}

	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, typeToken) {
			fields := strings.Fields(trimmed)
			if fields[0] != typeToken || len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedSource, trimmed)
			}
			stage, err := StageFromToken(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if _, dup := out[stage]; dup || (inStage && stage == cur) {
				return nil, fmt.Errorf("line %d: %w: stage %s declared twice", lineNo, ErrMalformedSource, stage)
			}
			flush()
			cur, inStage = stage, true
			continue
		}
		if !inStage {
			if trimmed != "" {
				return nil, fmt.Errorf("line %d: %w: text before first %s", lineNo, ErrMalformedSource, typeToken)
			}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("shader: scan: %w", err)
	}
	flush()
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no %s sections", ErrMalformedSource, typeToken)
	}
	return out, nil
}

// Load reads and parses a shader file from fsys.
func Load(fsys fs.FS, path string) (map[gfx.Stage][]byte, error) {
	b, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("shader: read %s: %w", path, err)
	}
	stages, err := Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("shader: parse %s: %w", path, err)
	}
	return stages, nil
}
