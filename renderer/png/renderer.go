package pngrenderer

import (
	"bytes"
	"fmt"
	"image/png"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"

	"github.com/luocy7/gstpress/fonts"
	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/template"
)

// 把编辑器的场景图栅格化为 PNG，用于预览与图片导出。
// 绘制遵循画家算法：切片顺序即叠放顺序，越靠后越在上层。

const defaultLineHeight = 1.16

// Render 将场景图绘制为 PNG 字节。scale 是像素与 pt 的倍率，1 为原大。
// excludeFromExport 的元素（页面边框辅助线）不会出现在导出结果里。
func Render(g *scene.Graph, scale float64) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("png: 场景图为空")
	}
	if scale <= 0 {
		scale = 1
	}

	w := int(template.PageWidth * scale)
	h := int(template.PageHeight * scale)
	dc := gg.NewContext(w, h)

	bg := g.Background
	if bg == "" {
		bg = "#ffffff"
	}
	setColor(dc, bg, 1)
	dc.Clear()

	faces := map[string]*truetype.Font{}
	for _, el := range g.Elements() {
		base := el.Common()
		if base.ExcludeFromExport {
			continue
		}
		dc.Push()
		if base.Angle != 0 {
			dc.RotateAbout(gg.Radians(base.Angle), base.Left*scale, base.Top*scale)
		}
		if err := drawElement(dc, el, scale, faces); err != nil {
			dc.Pop()
			return nil, err
		}
		dc.Pop()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("png: 编码失败: %w", err)
	}
	return buf.Bytes(), nil
}

func drawElement(dc *gg.Context, el scene.Element, s float64, faces map[string]*truetype.Font) error {
	base := el.Common()
	x := base.Left * s
	y := base.Top * s

	switch t := el.(type) {
	case *scene.Rect:
		w := t.Width * base.ScaleX * s
		h := t.Height * base.ScaleY * s
		rx := t.RX * base.ScaleX * s
		if rx > 0 {
			dc.DrawRoundedRectangle(x, y, w, h, rx)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}
		fillStroke(dc, t.Fill, t.Stroke, t.StrokeWidth*s, base.Opacity)
	case *scene.Circle:
		r := t.Radius * base.ScaleX * s
		dc.DrawCircle(x+r, y+t.Radius*base.ScaleY*s, r)
		fillStroke(dc, t.Fill, t.Stroke, t.StrokeWidth*s, base.Opacity)
	case *scene.Line:
		dc.DrawLine(
			x+t.X1*base.ScaleX*s, y+t.Y1*base.ScaleY*s,
			x+t.X2*base.ScaleX*s, y+t.Y2*base.ScaleY*s,
		)
		fillStroke(dc, "", t.Stroke, t.StrokeWidth*s, base.Opacity)
	case *scene.Textbox:
		return drawTextbox(dc, t, s, faces)
	case *scene.Image:
		img, err := gg.LoadImage(t.Src)
		if err != nil {
			// 找不到图片时画占位框，导出不中断
			dc.DrawRectangle(x, y, t.Width*base.ScaleX*s, t.Height*base.ScaleY*s)
			fillStroke(dc, "", "#94a3b8", s, base.Opacity)
			return nil
		}
		bounds := img.Bounds()
		if bounds.Dx() == 0 || bounds.Dy() == 0 {
			return nil
		}
		sx := t.Width * base.ScaleX * s / float64(bounds.Dx())
		sy := t.Height * base.ScaleY * s / float64(bounds.Dy())
		dc.Push()
		dc.Translate(x, y)
		dc.Scale(sx, sy)
		dc.DrawImage(img, 0, 0)
		dc.Pop()
	default:
		return fmt.Errorf("png: 不支持的元素类型 %s", el.Kind())
	}
	return nil
}

func drawTextbox(dc *gg.Context, t *scene.Textbox, s float64, faces map[string]*truetype.Font) error {
	base := t.Common()
	slot := "regular"
	if t.FontWeight == "bold" {
		slot = "bold"
	}
	f, ok := faces[slot]
	if !ok {
		data, err := fonts.Load(slot)
		if err != nil {
			return err
		}
		f, err = truetype.Parse(data)
		if err != nil {
			return fmt.Errorf("png: 解析字体失败: %w", err)
		}
		faces[slot] = f
	}

	size := t.FontSize * base.ScaleY * s
	if size <= 0 {
		size = 12 * s
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	setColor(dc, t.Fill, base.Opacity)

	lh := t.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	width := t.Width * base.ScaleX * s
	x := base.Left * s
	y := base.Top*s + size // 首行基线
	for _, line := range strings.Split(t.Text, "\n") {
		switch t.TextAlign {
		case "center":
			dc.DrawStringAnchored(line, x+width/2, y, 0.5, 0)
		case "right":
			dc.DrawStringAnchored(line, x+width, y, 1, 0)
		default:
			dc.DrawString(line, x, y)
		}
		y += size * lh
	}
	return nil
}

func fillStroke(dc *gg.Context, fill, stroke string, strokeWidth, opacity float64) {
	if fill != "" {
		setColor(dc, fill, opacity)
		if stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
			return
		}
	}
	if stroke != "" {
		setColor(dc, stroke, opacity)
		if strokeWidth <= 0 {
			strokeWidth = 1
		}
		dc.SetLineWidth(strokeWidth)
		dc.Stroke()
	} else {
		dc.ClearPath()
	}
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	r, g, b := parseHex(hex)
	if opacity < 0 || opacity > 1 {
		opacity = 1
	}
	dc.SetRGBA(float64(r)/255, float64(g)/255, float64(b)/255, opacity)
}

func parseHex(hex string) (int, int, int) {
	v := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(v) {
	case 3:
		return hexByte(strings.Repeat(string(v[0]), 2)),
			hexByte(strings.Repeat(string(v[1]), 2)),
			hexByte(strings.Repeat(string(v[2]), 2))
	case 6, 8:
		return hexByte(v[0:2]), hexByte(v[2:4]), hexByte(v[4:6])
	default:
		return 0, 0, 0
	}
}

func hexByte(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}
