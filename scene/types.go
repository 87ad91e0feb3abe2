package scene

import (
	"encoding/json"
	"fmt"
)

// 该文件定义场景图元素的封闭标签联合类型，供编辑器、模板编译器与渲染器共用。
// 坐标原点为页面左上角，长度单位均为 pt。

// Kind 是元素的类型判别符，与序列化 JSON 中的 type 字段一致。
type Kind string

const (
	KindRect    Kind = "Rect"
	KindTextbox Kind = "Textbox"
	KindCircle  Kind = "Circle"
	KindLine    Kind = "Line"
	KindImage   Kind = "Image"
)

// Base 保存所有元素共有的属性。
// ScaleX/ScaleY 与固有宽高永不合并：属性面板的"调宽调高"只改缩放因子。
type Base struct {
	ID      string
	Name    string
	Left    float64
	Top     float64
	ScaleX  float64
	ScaleY  float64
	Opacity float64 // [0,1]
	Angle   float64 // 顺时针角度
	// Selectable/Evented 控制用户能否选中/拖动，用于锁定结构参考元素。
	Selectable bool
	Evented    bool
	// ExcludeFromExport 仅页面边界参考框为 true：编辑时可见，永不序列化。
	ExcludeFromExport bool
	// Extra 保留加载时未识别的键，保存时原样写回（向前兼容，见序列化约定）。
	Extra map[string]json.RawMessage
}

// Common 返回元素的公共属性，供跨包读写。
func (b *Base) Common() *Base { return b }

// Element 是场景图中的单个绘图元素。实现类型即 Kind 列举的五种，不再扩展。
type Element interface {
	Kind() Kind
	Common() *Base
}

// DefaultBase 构造一个带默认值的公共属性集（缩放 1、不透明、可选中）。
func DefaultBase(id, name string) Base {
	return Base{
		ID:         id,
		Name:       name,
		ScaleX:     1,
		ScaleY:     1,
		Opacity:    1,
		Selectable: true,
		Evented:    true,
	}
}

// Rect 矩形，rx/ry 为圆角半径。
type Rect struct {
	Base
	Width       float64
	Height      float64
	Fill        string // hex 颜色，空串表示不填充
	Stroke      string
	StrokeWidth float64
	RX          float64
	RY          float64
}

func (r *Rect) Kind() Kind { return KindRect }

// Textbox 文本块，Width 为折行宽度，Text 可含内嵌换行。
type Textbox struct {
	Base
	Width      float64
	Text       string
	FontFamily string
	FontSize   float64
	FontWeight string // "normal"/"bold"
	Fill       string
	TextAlign  string // left/center/right
	LineHeight float64 // 行高倍数
}

func (t *Textbox) Kind() Kind { return KindTextbox }

// Circle 圆形。
type Circle struct {
	Base
	Radius      float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

func (c *Circle) Kind() Kind { return KindCircle }

// Line 线段，两端点为相对 Left/Top 的偏移。
type Line struct {
	Base
	X1          float64
	Y1          float64
	X2          float64
	Y2          float64
	Stroke      string
	StrokeWidth float64
}

func (l *Line) Kind() Kind { return KindLine }

// Image 图片。宽高为添加时解码出的固有像素尺寸，之后只通过缩放因子变化。
type Image struct {
	Base
	Width  float64
	Height float64
	Src    string // 来源引用（URL 或资源名），在添加时解析，加载时不再解析
}

func (i *Image) Kind() Kind { return KindImage }

// Validate 校验元素的几何属性。负的宽/高/半径/线宽在变更边界直接拒绝，而不是悄悄钳制。
func Validate(el Element) error {
	b := el.Common()
	if b.Opacity < 0 || b.Opacity > 1 {
		return fmt.Errorf("scene: opacity %g 超出 [0,1]", b.Opacity)
	}
	switch e := el.(type) {
	case *Rect:
		if e.Width < 0 || e.Height < 0 {
			return fmt.Errorf("scene: 矩形宽高不能为负 (%g×%g)", e.Width, e.Height)
		}
		if e.StrokeWidth < 0 {
			return fmt.Errorf("scene: 线宽不能为负 (%g)", e.StrokeWidth)
		}
	case *Textbox:
		if e.Width < 0 {
			return fmt.Errorf("scene: 文本宽度不能为负 (%g)", e.Width)
		}
	case *Circle:
		if e.Radius < 0 {
			return fmt.Errorf("scene: 半径不能为负 (%g)", e.Radius)
		}
		if e.StrokeWidth < 0 {
			return fmt.Errorf("scene: 线宽不能为负 (%g)", e.StrokeWidth)
		}
	case *Line:
		if e.StrokeWidth < 0 {
			return fmt.Errorf("scene: 线宽不能为负 (%g)", e.StrokeWidth)
		}
	case *Image:
		if e.Width < 0 || e.Height < 0 {
			return fmt.Errorf("scene: 图片宽高不能为负 (%g×%g)", e.Width, e.Height)
		}
	default:
		return fmt.Errorf("scene: 未知元素类型 %T", el)
	}
	return nil
}
