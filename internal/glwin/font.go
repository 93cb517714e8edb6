package glwin

import (
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph atlas layout for basicfont.Face7x13: printable ASCII laid out on
// a fixed grid, one cell per rune.
const (
	glyphFirst = 32
	glyphLast  = 126
	glyphCols  = 32
	glyphRows  = 3
	glyphW     = 7
	glyphH     = 13
	atlasW     = glyphCols * glyphW
	atlasH     = glyphRows * glyphH
)

type fontAtlas struct {
	tex uint32
}

// newFontAtlas rasterizes the builtin bitmap face into a texture once at
// startup.
func newFontAtlas() *fontAtlas {
	img := image.NewRGBA(image.Rect(0, 0, atlasW, atlasH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: basicfont.Face7x13,
	}
	for r := rune(glyphFirst); r <= glyphLast; r++ {
		cell := int(r) - glyphFirst
		cx := (cell % glyphCols) * glyphW
		cy := (cell / glyphCols) * glyphH
		drawer.Dot = fixed.P(cx, cy+basicfont.Face7x13.Ascent)
		drawer.DrawString(string(r))
	}

	// Flip so v=0 is the top row, matching the screen-space quads.
	flipped := image.NewRGBA(img.Bounds())
	for y := 0; y < atlasH; y++ {
		sy := atlasH - 1 - y
		draw.Draw(flipped, image.Rect(0, y, atlasW, y+1), img, image.Pt(0, sy), draw.Src)
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, atlasW, atlasH, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(flipped.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &fontAtlas{tex: tex}
}

// uv returns the atlas cell corners for a rune. Unknown runes map to '?'.
func (f *fontAtlas) uv(r rune) (u0, v0, u1, v1 float32) {
	if r < glyphFirst || r > glyphLast {
		r = '?'
	}
	cell := int(r) - glyphFirst
	cx := float32((cell % glyphCols) * glyphW)
	cy := float32((cell / glyphCols) * glyphH)
	u0 = cx / atlasW
	u1 = (cx + glyphW) / atlasW
	// Atlas rows were flipped at upload, v grows downward from 1.
	v1 = 1 - cy/atlasH
	v0 = 1 - (cy+glyphH)/atlasH
	return
}

func (f *fontAtlas) delete() {
	gl.DeleteTextures(1, &f.tex)
}
