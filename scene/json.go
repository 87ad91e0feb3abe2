package scene

import (
	"encoding/json"
	"fmt"
)

// 序列化约定：{ version, background, objects }，每个元素带 type 判别符。
// 未识别的元素键在加载→保存往返中原样保留（向前兼容新编译器写入的字段）；
// 未识别的 type 判别符则在反序列化时直接拒绝。

// Profile 控制序列化时写出的属性集合。
type Profile int

const (
	// ProfileSave 最终保存产物：身份/命名 + 视觉属性。
	ProfileSave Profile = iota
	// ProfileHistory 历史快照：在保存集合之上附加 selectable/evented，
	// 以便撤销/重做能完整还原编辑状态。
	ProfileHistory
)

type envelope struct {
	Version    string            `json:"version"`
	Background string            `json:"background"`
	Objects    []json.RawMessage `json:"objects"`
}

// Marshal 将场景图序列化为标签 JSON。页面边界参考框（excludeFromExport）永不写出。
// 对相同的图与档位，输出字节完全一致（map 键由 encoding/json 排序）。
func Marshal(g *Graph, profile Profile) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("scene: 场景图为空")
	}
	env := envelope{
		Version:    g.Version,
		Background: g.Background,
		Objects:    []json.RawMessage{},
	}
	for _, el := range g.els {
		if el.Common().ExcludeFromExport {
			continue
		}
		m := elementMap(el, profile)
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("scene: 序列化元素 %q 失败: %w", el.Common().ID, err)
		}
		env.Objects = append(env.Objects, raw)
	}
	return json.Marshal(env)
}

// Unmarshal 从标签 JSON 还原场景图。
func Unmarshal(data []byte) (*Graph, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("scene: 解析场景图 JSON 失败: %w", err)
	}
	g := New(env.Background)
	if env.Version != "" {
		g.Version = env.Version
	}
	for i, raw := range env.Objects {
		el, err := decodeElement(raw)
		if err != nil {
			return nil, fmt.Errorf("scene: 第 %d 个元素无效: %w", i, err)
		}
		if err := g.Append(el); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type baseDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Left       float64  `json:"left"`
	Top        float64  `json:"top"`
	ScaleX     *float64 `json:"scaleX"`
	ScaleY     *float64 `json:"scaleY"`
	Opacity    *float64 `json:"opacity"`
	Angle      float64  `json:"angle"`
	Selectable *bool    `json:"selectable"`
	Evented    *bool    `json:"evented"`
}

// toBase 应用缺省值：缩放 1、不透明、可选中（保存档位不写 selectable/evented）。
func (d baseDTO) toBase(extra map[string]json.RawMessage) Base {
	b := DefaultBase(d.ID, d.Name)
	b.Left = d.Left
	b.Top = d.Top
	b.Angle = d.Angle
	if d.ScaleX != nil {
		b.ScaleX = *d.ScaleX
	}
	if d.ScaleY != nil {
		b.ScaleY = *d.ScaleY
	}
	if d.Opacity != nil {
		b.Opacity = *d.Opacity
	}
	if d.Selectable != nil {
		b.Selectable = *d.Selectable
	}
	if d.Evented != nil {
		b.Evented = *d.Evented
	}
	if len(extra) > 0 {
		b.Extra = extra
	}
	return b
}

var commonKeys = []string{
	"type", "id", "name", "left", "top", "scaleX", "scaleY",
	"opacity", "angle", "selectable", "evented", "excludeFromExport",
}

var kindKeys = map[Kind][]string{
	KindRect:    {"width", "height", "fill", "stroke", "strokeWidth", "rx", "ry"},
	KindTextbox: {"width", "text", "fontFamily", "fontSize", "fontWeight", "fill", "textAlign", "lineHeight"},
	KindCircle:  {"radius", "fill", "stroke", "strokeWidth"},
	KindLine:    {"x1", "y1", "x2", "y2", "stroke", "strokeWidth"},
	KindImage:   {"width", "height", "src"},
}

func extraKeys(kind Kind, raw map[string]json.RawMessage) map[string]json.RawMessage {
	known := map[string]bool{}
	for _, k := range commonKeys {
		known[k] = true
	}
	for _, k := range kindKeys[kind] {
		known[k] = true
	}
	var extra map[string]json.RawMessage
	for k, v := range raw {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = map[string]json.RawMessage{}
		}
		extra[k] = v
	}
	return extra
}

func decodeElement(raw json.RawMessage) (Element, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	var typ string
	if v, ok := keys["type"]; ok {
		if err := json.Unmarshal(v, &typ); err != nil {
			return nil, fmt.Errorf("type 字段无效: %w", err)
		}
	}
	kind := Kind(typ)
	extra := extraKeys(kind, keys)

	switch kind {
	case KindRect:
		var d struct {
			baseDTO
			Width       float64 `json:"width"`
			Height      float64 `json:"height"`
			Fill        string  `json:"fill"`
			Stroke      string  `json:"stroke"`
			StrokeWidth float64 `json:"strokeWidth"`
			RX          float64 `json:"rx"`
			RY          float64 `json:"ry"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &Rect{Base: d.toBase(extra), Width: d.Width, Height: d.Height,
			Fill: d.Fill, Stroke: d.Stroke, StrokeWidth: d.StrokeWidth, RX: d.RX, RY: d.RY}, nil
	case KindTextbox:
		var d struct {
			baseDTO
			Width      float64 `json:"width"`
			Text       string  `json:"text"`
			FontFamily string  `json:"fontFamily"`
			FontSize   float64 `json:"fontSize"`
			FontWeight string  `json:"fontWeight"`
			Fill       string  `json:"fill"`
			TextAlign  string  `json:"textAlign"`
			LineHeight float64 `json:"lineHeight"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &Textbox{Base: d.toBase(extra), Width: d.Width, Text: d.Text,
			FontFamily: d.FontFamily, FontSize: d.FontSize, FontWeight: d.FontWeight,
			Fill: d.Fill, TextAlign: d.TextAlign, LineHeight: d.LineHeight}, nil
	case KindCircle:
		var d struct {
			baseDTO
			Radius      float64 `json:"radius"`
			Fill        string  `json:"fill"`
			Stroke      string  `json:"stroke"`
			StrokeWidth float64 `json:"strokeWidth"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &Circle{Base: d.toBase(extra), Radius: d.Radius, Fill: d.Fill,
			Stroke: d.Stroke, StrokeWidth: d.StrokeWidth}, nil
	case KindLine:
		var d struct {
			baseDTO
			X1          float64 `json:"x1"`
			Y1          float64 `json:"y1"`
			X2          float64 `json:"x2"`
			Y2          float64 `json:"y2"`
			Stroke      string  `json:"stroke"`
			StrokeWidth float64 `json:"strokeWidth"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &Line{Base: d.toBase(extra), X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2,
			Stroke: d.Stroke, StrokeWidth: d.StrokeWidth}, nil
	case KindImage:
		var d struct {
			baseDTO
			Width  float64 `json:"width"`
			Height float64 `json:"height"`
			Src    string  `json:"src"`
		}
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		return &Image{Base: d.toBase(extra), Width: d.Width, Height: d.Height, Src: d.Src}, nil
	default:
		return nil, fmt.Errorf("未知元素类型 %q", typ)
	}
}

// elementMap 把元素展开为可排序序列化的键值集合。
// 已知键始终写出（不做 omitempty），保证相同输入的输出字节一致。
func elementMap(el Element, profile Profile) map[string]any {
	b := el.Common()
	m := map[string]any{
		"type":    string(el.Kind()),
		"id":      b.ID,
		"name":    b.Name,
		"left":    b.Left,
		"top":     b.Top,
		"scaleX":  b.ScaleX,
		"scaleY":  b.ScaleY,
		"opacity": b.Opacity,
		"angle":   b.Angle,
	}
	if profile == ProfileHistory {
		m["selectable"] = b.Selectable
		m["evented"] = b.Evented
	}
	switch e := el.(type) {
	case *Rect:
		m["width"] = e.Width
		m["height"] = e.Height
		m["fill"] = e.Fill
		m["stroke"] = e.Stroke
		m["strokeWidth"] = e.StrokeWidth
		m["rx"] = e.RX
		m["ry"] = e.RY
	case *Textbox:
		m["width"] = e.Width
		m["text"] = e.Text
		m["fontFamily"] = e.FontFamily
		m["fontSize"] = e.FontSize
		m["fontWeight"] = e.FontWeight
		m["fill"] = e.Fill
		m["textAlign"] = e.TextAlign
		m["lineHeight"] = e.LineHeight
	case *Circle:
		m["radius"] = e.Radius
		m["fill"] = e.Fill
		m["stroke"] = e.Stroke
		m["strokeWidth"] = e.StrokeWidth
	case *Line:
		m["x1"] = e.X1
		m["y1"] = e.Y1
		m["x2"] = e.X2
		m["y2"] = e.Y2
		m["stroke"] = e.Stroke
		m["strokeWidth"] = e.StrokeWidth
	case *Image:
		m["width"] = e.Width
		m["height"] = e.Height
		m["src"] = e.Src
	}
	// 未识别键原样写回；不允许覆盖已知键
	for k, v := range b.Extra {
		if _, ok := m[k]; ok {
			continue
		}
		m[k] = v
	}
	return m
}
