package component

import (
	"github.com/bootzin/BootEngine-sub000/gfx"
	"github.com/go-gl/mathgl/mgl32"
)

// Sprite makes a transformed entity drawable. A nil Texture draws a solid
// quad in Color using the renderer's white texture.
type Sprite struct {
	Color        mgl32.Vec4
	Texture      gfx.Texture
	TextureName  string
	TilingFactor float32
}

// NewSprite returns an untextured sprite of the given color.
func NewSprite(color mgl32.Vec4) *Sprite {
	return &Sprite{Color: color, TilingFactor: 1}
}

// Tiling returns the tiling factor, treating zero as 1.
func (s Sprite) Tiling() float32 {
	if s.TilingFactor == 0 {
		return 1
	}
	return s.TilingFactor
}

var SpriteComponent = NewNamedComponent[Sprite]("Sprite")
