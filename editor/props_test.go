package editor

import "testing"

func TestUpdateCommonProperties(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}

	if err := e.UpdateProperty(r.ID, "left", 42.5); err != nil {
		t.Fatalf("更新 left 失败: %v", err)
	}
	if err := e.UpdateProperty(r.ID, "opacity", 0.5); err != nil {
		t.Fatalf("更新 opacity 失败: %v", err)
	}
	if err := e.UpdateProperty(r.ID, "name", "底色块"); err != nil {
		t.Fatalf("更新 name 失败: %v", err)
	}
	if r.Left != 42.5 || r.Opacity != 0.5 || r.Name != "底色块" {
		t.Fatalf("属性未生效: %+v", r.Base)
	}

	if err := e.UpdateProperty(r.ID, "opacity", 1.5); err == nil {
		t.Fatalf("越界透明度应被拒绝")
	}
	if r.Opacity != 0.5 {
		t.Fatalf("拒绝后状态不应改变")
	}
	if err := e.UpdateProperty(r.ID, "blink", true); err == nil {
		t.Fatalf("未知属性键应被拒绝")
	}
}

func TestResizeSetsScaleNotIntrinsic(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect() // 固有 120×80
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}

	if err := e.UpdateProperty(r.ID, "width", 300.0); err != nil {
		t.Fatalf("更新 width 失败: %v", err)
	}
	if r.Width != 120 {
		t.Fatalf("固有宽度不应被改写: %v", r.Width)
	}
	if r.ScaleX != 2.5 {
		t.Fatalf("ScaleX = %v, 期望 2.5", r.ScaleX)
	}

	if err := e.UpdateProperty(r.ID, "height", 40.0); err != nil {
		t.Fatalf("更新 height 失败: %v", err)
	}
	if r.Height != 80 || r.ScaleY != 0.5 {
		t.Fatalf("height 调整应只写 ScaleY: h=%v sy=%v", r.Height, r.ScaleY)
	}

	if err := e.UpdateProperty(r.ID, "width", -10.0); err == nil {
		t.Fatalf("负尺寸应被拒绝")
	}
	if r.ScaleX != 2.5 {
		t.Fatalf("拒绝后缩放不应改变")
	}
}

func TestResizeCircleUsesDiameter(t *testing.T) {
	e := newTestEditor(t)
	c, err := e.AddCircle() // 半径 40，直径 80
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.UpdateProperty(c.ID, "width", 160.0); err != nil {
		t.Fatalf("更新失败: %v", err)
	}
	if c.Radius != 40 || c.ScaleX != 2 {
		t.Fatalf("圆的缩放按直径换算: r=%v sx=%v", c.Radius, c.ScaleX)
	}
}

func TestTextboxHeightRejected(t *testing.T) {
	e := newTestEditor(t)
	tb, err := e.AddTextbox("hello")
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.UpdateProperty(tb.ID, "height", 100.0); err == nil {
		t.Fatalf("文本块高度由内容决定，直接设置应被拒绝")
	}
	if err := e.UpdateProperty(tb.ID, "width", 320.0); err != nil {
		t.Fatalf("文本块宽度调整失败: %v", err)
	}
	if tb.Width != 160 || tb.ScaleX != 2 {
		t.Fatalf("文本块宽度应换算为缩放: w=%v sx=%v", tb.Width, tb.ScaleX)
	}
}

func TestKindSpecificProperties(t *testing.T) {
	e := newTestEditor(t)
	tb, err := e.AddTextbox("hi")
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.UpdateProperty(tb.ID, "text", "总价"); err != nil {
		t.Fatalf("更新 text 失败: %v", err)
	}
	if err := e.UpdateProperty(tb.ID, "textAlign", "center"); err != nil {
		t.Fatalf("更新 textAlign 失败: %v", err)
	}
	if err := e.UpdateProperty(tb.ID, "textAlign", "justify"); err == nil {
		t.Fatalf("无效对齐值应被拒绝")
	}
	if tb.Text != "总价" || tb.TextAlign != "center" {
		t.Fatalf("文本属性未生效: %+v", tb)
	}

	ln, err := e.AddLine()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.UpdateProperty(ln.ID, "x2", 200.0); err != nil {
		t.Fatalf("更新 x2 失败: %v", err)
	}
	if err := e.UpdateProperty(ln.ID, "width", 100.0); err == nil {
		t.Fatalf("线段不支持宽度调整")
	}
	if ln.X2 != 200 {
		t.Fatalf("x2 未生效: %v", ln.X2)
	}
}

func TestNumericCoercion(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	// 表单控件常给出字符串或整数
	if err := e.UpdateProperty(r.ID, "top", "36.5"); err != nil {
		t.Fatalf("字符串数值应可解析: %v", err)
	}
	if err := e.UpdateProperty(r.ID, "left", 40); err != nil {
		t.Fatalf("整数应可解析: %v", err)
	}
	if r.Top != 36.5 || r.Left != 40 {
		t.Fatalf("坐标未生效: %+v", r.Base)
	}
	if err := e.UpdateProperty(r.ID, "top", true); err == nil {
		t.Fatalf("布尔值不应被接受为数值")
	}
}
