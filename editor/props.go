package editor

import (
	"fmt"
	"strconv"

	"github.com/luocy7/gstpress/scene"
)

// 属性面板的变更入口。与直接改字段不同，这里是变更边界：
// 非法值（负的几何量、越界透明度、未知键）在改动任何状态之前被拒绝，
// 成功的变更发出单次结构变化通知并进入历史。

// UpdateProperty 更新指定元素的一个属性。
// width/height 是特例：按"请求像素尺寸 ÷ 固有尺寸"换算为缩放因子写入，
// 永不直接改固有宽高，使宽高编辑表现为 resize 而非重排。
func (e *Editor) UpdateProperty(id, key string, value any) error {
	el, err := e.mutableByID(id)
	if err != nil {
		return err
	}
	b := el.Common()

	switch key {
	case "name":
		s, err := toString(value)
		if err != nil {
			return err
		}
		b.Name = s
	case "left", "top", "angle":
		f, err := toFloat(value)
		if err != nil {
			return err
		}
		switch key {
		case "left":
			b.Left = f
		case "top":
			b.Top = f
		case "angle":
			b.Angle = f
		}
	case "opacity":
		f, err := toFloat(value)
		if err != nil {
			return err
		}
		if f < 0 || f > 1 {
			return fmt.Errorf("editor: opacity %g 超出 [0,1]", f)
		}
		b.Opacity = f
	case "width", "height":
		f, err := toFloat(value)
		if err != nil {
			return err
		}
		if err := applyResize(el, key, f); err != nil {
			return err
		}
	default:
		if err := setKindProperty(el, key, value); err != nil {
			return err
		}
	}

	e.afterMutation()
	return nil
}

// applyResize 把请求的像素尺寸换算成缩放因子。固有尺寸保持不变，
// 这样字体与描边在非均匀缩放下仍按固有尺寸渲染，不会发糊。
func applyResize(el scene.Element, key string, req float64) error {
	if req < 0 {
		return fmt.Errorf("editor: %s 不能为负 (%g)", key, req)
	}
	var intrinsic float64
	switch t := el.(type) {
	case *scene.Rect:
		if key == "width" {
			intrinsic = t.Width
		} else {
			intrinsic = t.Height
		}
	case *scene.Image:
		if key == "width" {
			intrinsic = t.Width
		} else {
			intrinsic = t.Height
		}
	case *scene.Circle:
		intrinsic = 2 * t.Radius
	case *scene.Textbox:
		if key != "width" {
			return fmt.Errorf("editor: 文本块高度由内容决定，不可直接设置")
		}
		intrinsic = t.Width
	default:
		return fmt.Errorf("editor: %s 元素不支持 %s 调整", el.Kind(), key)
	}
	if intrinsic <= 0 {
		return fmt.Errorf("editor: 固有尺寸为零，无法换算缩放因子")
	}
	b := el.Common()
	if key == "width" {
		b.ScaleX = req / intrinsic
	} else {
		b.ScaleY = req / intrinsic
	}
	return nil
}

// setKindProperty 按元素类型穷举处理各自的视觉属性。
func setKindProperty(el scene.Element, key string, value any) error {
	switch t := el.(type) {
	case *scene.Rect:
		switch key {
		case "fill", "stroke":
			return setColor(&t.Fill, &t.Stroke, key, value)
		case "strokeWidth":
			return setNonNegative(&t.StrokeWidth, key, value)
		case "rx":
			return setNonNegative(&t.RX, key, value)
		case "ry":
			return setNonNegative(&t.RY, key, value)
		}
	case *scene.Textbox:
		switch key {
		case "text":
			s, err := toString(value)
			if err != nil {
				return err
			}
			t.Text = s
			return nil
		case "fontFamily", "fontWeight", "textAlign", "fill":
			s, err := toString(value)
			if err != nil {
				return err
			}
			switch key {
			case "fontFamily":
				t.FontFamily = s
			case "fontWeight":
				t.FontWeight = s
			case "textAlign":
				if s != "left" && s != "center" && s != "right" {
					return fmt.Errorf("editor: textAlign %q 无效", s)
				}
				t.TextAlign = s
			case "fill":
				t.Fill = s
			}
			return nil
		case "fontSize":
			return setNonNegative(&t.FontSize, key, value)
		case "lineHeight":
			return setNonNegative(&t.LineHeight, key, value)
		}
	case *scene.Circle:
		switch key {
		case "radius":
			return setNonNegative(&t.Radius, key, value)
		case "fill", "stroke":
			return setColor(&t.Fill, &t.Stroke, key, value)
		case "strokeWidth":
			return setNonNegative(&t.StrokeWidth, key, value)
		}
	case *scene.Line:
		switch key {
		case "x1", "y1", "x2", "y2":
			f, err := toFloat(value)
			if err != nil {
				return err
			}
			switch key {
			case "x1":
				t.X1 = f
			case "y1":
				t.Y1 = f
			case "x2":
				t.X2 = f
			case "y2":
				t.Y2 = f
			}
			return nil
		case "stroke":
			s, err := toString(value)
			if err != nil {
				return err
			}
			t.Stroke = s
			return nil
		case "strokeWidth":
			return setNonNegative(&t.StrokeWidth, key, value)
		}
	case *scene.Image:
		switch key {
		case "src":
			// 图片来源在添加时解析，之后不可改；替换图片应删除后重加
			return fmt.Errorf("editor: 图片来源不可修改")
		}
	}
	return fmt.Errorf("editor: %s 元素不支持属性 %q", el.Kind(), key)
}

func setColor(fill, stroke *string, key string, value any) error {
	s, err := toString(value)
	if err != nil {
		return err
	}
	if key == "fill" {
		*fill = s
	} else {
		*stroke = s
	}
	return nil
}

func setNonNegative(dst *float64, key string, value any) error {
	f, err := toFloat(value)
	if err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("editor: %s 不能为负 (%g)", key, f)
	}
	*dst = f
	return nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("editor: 数值 %q 无法解析: %w", v, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("editor: 期望数值，实际为 %T", value)
	}
}

func toString(value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("editor: 期望字符串，实际为 %T", value)
	}
	return s, nil
}
