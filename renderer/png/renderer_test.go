package pngrenderer

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/template"
)

func testGraph(t *testing.T) *scene.Graph {
	t.Helper()
	g := scene.New("#f8fafc")
	r := &scene.Rect{Base: scene.DefaultBase("r1", "底色"), Width: 120, Height: 80, Fill: "#2563eb"}
	r.Left, r.Top = 40, 40
	tb := &scene.Textbox{Base: scene.DefaultBase("t1", "标题"), Width: 200,
		Text: "TAX INVOICE", FontSize: 16, FontWeight: "bold", Fill: "#1e293b"}
	tb.Left, tb.Top = 40, 140
	ln := &scene.Line{Base: scene.DefaultBase("l1", "线"), X2: 200, Stroke: "#94a3b8", StrokeWidth: 1}
	ln.Left, ln.Top = 40, 200
	for _, el := range []scene.Element{r, tb, ln} {
		if err := g.Append(el); err != nil {
			t.Fatalf("构造场景图失败: %v", err)
		}
	}
	return g
}

func TestRenderProducesPNG(t *testing.T) {
	data, err := Render(testGraph(t), 1)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出不是合法 PNG: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != int(template.PageWidth) || b.Dy() != int(template.PageHeight) {
		t.Fatalf("图片尺寸 = %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderScale(t *testing.T) {
	data, err := Render(testGraph(t), 2)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出不是合法 PNG: %v", err)
	}
	if img.Bounds().Dx() != int(template.PageWidth*2) {
		t.Fatalf("倍率 2 下宽度 = %d", img.Bounds().Dx())
	}
}

func TestRenderSkipsGuide(t *testing.T) {
	g := scene.New("#ffffff")
	guide := &scene.Rect{Width: 595, Height: 842, Stroke: "#ff0000", StrokeWidth: 20}
	guide.Name = "page_border"
	guide.ExcludeFromExport = true
	guide.ScaleX, guide.ScaleY, guide.Opacity = 1, 1, 1
	if err := g.Prepend(guide); err != nil {
		t.Fatalf("插入参考框失败: %v", err)
	}

	data, err := Render(g, 1)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	// 参考框被跳过：左上角应是纯白背景而非红色描边
	r, g8, b8, _ := img.At(2, 2).RGBA()
	if r>>8 != 255 || g8>>8 != 255 || b8>>8 != 255 {
		t.Fatalf("参考框不应被导出，左上角颜色 = %d,%d,%d", r>>8, g8>>8, b8>>8)
	}
}

func TestRenderNilGraph(t *testing.T) {
	if _, err := Render(nil, 1); err == nil {
		t.Fatalf("空场景图应报错")
	}
}
