package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/luocy7/gstpress/fonts"
	"github.com/luocy7/gstpress/layout"
	"github.com/luocy7/gstpress/renderer"
)

const defaultStrokeWidth = 0.2 // mm

// Renderer draws layout results via github.com/tdewolff/canvas.
// 布局结果以 pt 为单位，这里在画布边界统一换算为 mm。
type Renderer struct {
	baseDir string

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// NewRenderer 创建 PDF 渲染器，baseDir 用于解析图片的相对路径。
func NewRenderer(baseDir string) *Renderer {
	return &Renderer{
		baseDir:  baseDir,
		families: map[string]*canvas.FontFamily{},
	}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, layout.MmFromPt(first.Width), layout.MmFromPt(first.Height), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		w := layout.MmFromPt(page.Width)
		h := layout.MmFromPt(page.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawPage 按 形状 → 文本 → 图片 的顺序绘制单页。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	r.drawRects(ctx, page.Rects)
	r.drawLines(ctx, page.Lines)
	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb); err != nil {
			return err
		}
	}
	return r.drawImages(ctx, page.Images)
}

func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := layout.MmFromPt(rc.StrokeWidth)
		if w <= 0 {
			w = defaultStrokeWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		if rc.StrokeColor != nil {
			ctx.SetStrokeColor(colorFromLayout(*rc.StrokeColor))
			ctx.SetStrokeWidth(w)
		} else {
			ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.DrawPath(layout.MmFromPt(rc.X), layout.MmFromPt(rc.Y),
			canvas.Rectangle(layout.MmFromPt(rc.Width), layout.MmFromPt(rc.Height)))
	}
}

func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := layout.MmFromPt(ln.Width)
		if w <= 0 {
			w = defaultStrokeWidth
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(layout.MmFromPt(ln.X2-ln.X1), layout.MmFromPt(ln.Y2-ln.Y1))
		ctx.DrawPath(layout.MmFromPt(ln.X1), layout.MmFromPt(ln.Y1), p)
	}
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	// 字号保持 pt 创建字体面；坐标换算为 mm。
	face, err := r.fontFace(tb.Font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = layout.MmFromPt(tb.X + tb.Width/2)
	case "right", "end":
		textAlign = canvas.Right
		anchorX = layout.MmFromPt(tb.X + tb.Width)
	default:
		textAlign = canvas.Left
		anchorX = layout.MmFromPt(tb.X)
	}

	metrics := face.Metrics()
	lineStep := layout.MmFromPt(tb.FontSize * 1.3)
	cursorY := layout.MmFromPt(tb.Y)
	for _, line := range strings.Split(tb.Content, "\n") {
		textLine := canvas.NewTextLine(face, line, textAlign)
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(anchorX, cursorY+metrics.Ascent, textLine)
		cursorY += lineStep
	}
	return nil
}

func (r *Renderer) drawImages(ctx *canvas.Context, images []layout.ImageBox) error {
	for _, img := range images {
		if img.Src == "" {
			continue
		}
		path := img.Src
		if !filepath.IsAbs(path) {
			if r.baseDir == "" {
				return fmt.Errorf("未指定资源目录时不允许使用相对图片路径：%s", img.Src)
			}
			path = filepath.Join(r.baseDir, path)
		}
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("读取图片 %s 失败: %w", img.Src, err)
		}
		imgData, _, err := image.Decode(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("解码图片 %s 失败: %w", img.Src, err)
		}

		width := layout.MmFromPt(img.Width)
		if width <= 0 {
			width = float64(imgData.Bounds().Dx()) * layout.PtToMm
		}
		dpmm := float64(imgData.Bounds().Dx()) / width
		if dpmm <= 0 {
			dpmm = 1
		}
		ctx.DrawImage(layout.MmFromPt(img.X), layout.MmFromPt(img.Y), imgData, canvas.DPMM(dpmm))
	}
	return nil
}

// fontFace 按字体槽位名取缓存的字体族并创建指定字号的字体面。
func (r *Renderer) fontFace(slot string, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFamily(slot)
	if err != nil {
		return nil, err
	}
	if sizePt <= 0 {
		sizePt = 10
	}
	return family.Face(sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFamily(slot string) (*canvas.FontFamily, error) {
	if slot == "" {
		slot = "regular"
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[slot]; ok {
		return family, nil
	}
	data, err := fonts.Load(slot)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("gstpress-" + slot)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", slot, err)
	}
	r.families[slot] = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}
