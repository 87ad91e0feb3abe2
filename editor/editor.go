package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/luocy7/gstpress/scene"
)

// Editor 是交互式编辑器引擎：每个编辑会话独占一个场景图（没有任何
// 进程级单例），对外暴露变更、选择、撤销/重做与序列化操作。
// 所有变更都在事件线程上同步完成；周边 UI 通过事件回调订阅变化，
// 引擎不反向触碰 UI 状态。
type Editor struct {
	graph *scene.Graph
	pageW float64
	pageH float64

	history   [][]byte
	cursor    int
	restoring bool

	selected string
	dirty    bool
	saving   bool

	imageGen int
	loader   ImageLoader

	// OnSelectionChanged 在选中元素变化时触发，id 为空表示取消选择。
	OnSelectionChanged func(id string)
	// OnStructuralMutation 在图结构发生变化（含撤销/重做的还原）后触发一次。
	OnStructuralMutation func()
}

// Options 配置编辑会话。
type Options struct {
	PageWidth   float64 // 缺省 595
	PageHeight  float64 // 缺省 842
	ImageLoader ImageLoader
}

// Store 是外部持久化协作方，保存序列化后的场景图。
type Store interface {
	Save(data []byte) error
}

// New 创建一个只含页面边界参考框的空编辑会话。
func New(opts Options) *Editor {
	if opts.PageWidth <= 0 {
		opts.PageWidth = 595
	}
	if opts.PageHeight <= 0 {
		opts.PageHeight = 842
	}
	e := &Editor{
		graph:  scene.New("#ffffff"),
		pageW:  opts.PageWidth,
		pageH:  opts.PageHeight,
		loader: opts.ImageLoader,
	}
	e.ensureGuide()
	e.resetHistory()
	return e
}

// Graph 返回当前场景图（按 z 序），供渲染面读取。
func (e *Editor) Graph() *scene.Graph { return e.graph }

// Dirty 报告自上次成功保存以来是否有未保存的变化。
// 撤销/重做同样置脏：它跟踪的是与持久化状态的偏离，不是与初始加载的偏离。
func (e *Editor) Dirty() bool { return e.dirty }

// Selected 返回当前选中元素的 id，无选中时为空串。
func (e *Editor) Selected() string { return e.selected }

// Select 选中指定元素。页面边界参考框没有 id，因此永远无法被选中。
func (e *Editor) Select(id string) error {
	if id == "" {
		e.Deselect()
		return nil
	}
	el := e.graph.ByID(id)
	if el == nil {
		return fmt.Errorf("editor: 元素 %q 不存在", id)
	}
	if !el.Common().Selectable {
		return fmt.Errorf("editor: 元素 %q 不可选中", id)
	}
	if e.selected != id {
		e.selected = id
		e.emitSelection(id)
	}
	return nil
}

// Deselect 取消选择。
func (e *Editor) Deselect() {
	if e.selected == "" {
		return
	}
	e.selected = ""
	e.emitSelection("")
}

// AddRect 以默认几何追加一个矩形。
func (e *Editor) AddRect() (*scene.Rect, error) {
	el := &scene.Rect{
		Base:   scene.DefaultBase(uuid.NewString(), "矩形"),
		Width:  120,
		Height: 80,
		Fill:   "#d8e1f0",
	}
	el.Left, el.Top = 100, 100
	if err := e.appendElement(el); err != nil {
		return nil, err
	}
	return el, nil
}

// AddCircle 以默认几何追加一个圆。
func (e *Editor) AddCircle() (*scene.Circle, error) {
	el := &scene.Circle{
		Base:   scene.DefaultBase(uuid.NewString(), "圆形"),
		Radius: 40,
		Fill:   "#d8e1f0",
	}
	el.Left, el.Top = 100, 100
	if err := e.appendElement(el); err != nil {
		return nil, err
	}
	return el, nil
}

// AddLine 以默认几何追加一条线段。
func (e *Editor) AddLine() (*scene.Line, error) {
	el := &scene.Line{
		Base:        scene.DefaultBase(uuid.NewString(), "线段"),
		X2:          120,
		Stroke:      "#1f2937",
		StrokeWidth: 1,
	}
	el.Left, el.Top = 100, 100
	if err := e.appendElement(el); err != nil {
		return nil, err
	}
	return el, nil
}

// AddTextbox 以默认几何追加一个文本块。
func (e *Editor) AddTextbox(text string) (*scene.Textbox, error) {
	if text == "" {
		text = "Text"
	}
	el := &scene.Textbox{
		Base:       scene.DefaultBase(uuid.NewString(), "文本"),
		Width:      160,
		Text:       text,
		FontFamily: "regular",
		FontSize:   12,
		FontWeight: "normal",
		Fill:       "#1f2937",
		TextAlign:  "left",
		LineHeight: 1.25,
	}
	el.Left, el.Top = 100, 100
	if err := e.appendElement(el); err != nil {
		return nil, err
	}
	return el, nil
}

func (e *Editor) appendElement(el scene.Element) error {
	if err := scene.Validate(el); err != nil {
		return err
	}
	if err := e.graph.Append(el); err != nil {
		return err
	}
	e.afterMutation()
	return nil
}

// RemoveSelected 删除当前选中的元素；无选中时为空操作。
func (e *Editor) RemoveSelected() {
	if e.selected == "" {
		return
	}
	id := e.selected
	if !e.graph.RemoveByID(id) {
		return
	}
	e.selected = ""
	e.emitSelection("")
	e.afterMutation()
}

// BringForward 将元素上移一层（与相邻元素交换）。已在最上层时为空操作。
func (e *Editor) BringForward(id string) error {
	if _, err := e.mutableByID(id); err != nil {
		return err
	}
	if e.graph.BringForward(id) {
		e.afterMutation()
	}
	return nil
}

// SendBackward 将元素下移一层。参考框永远压底，元素不能与它交换。
func (e *Editor) SendBackward(id string) error {
	if _, err := e.mutableByID(id); err != nil {
		return err
	}
	idx := e.graph.IndexOf(id)
	if idx <= 0 {
		return nil
	}
	below := e.graph.Elements()[idx-1]
	if below.Common().ExcludeFromExport {
		return nil
	}
	if e.graph.SendBackward(id) {
		e.afterMutation()
	}
	return nil
}

// Clear 删除所有非参考框元素并清除选择。
func (e *Editor) Clear() {
	els := e.graph.Elements()
	ids := make([]string, 0, len(els))
	for _, el := range els {
		if el.Common().ExcludeFromExport {
			continue
		}
		ids = append(ids, el.Common().ID)
	}
	if len(ids) == 0 {
		return
	}
	for _, id := range ids {
		e.graph.RemoveByID(id)
	}
	e.imageGen++
	e.Deselect()
	e.afterMutation()
}

// Serialize 以保存档位序列化当前场景图。参考框永不出现在产物中。
func (e *Editor) Serialize() ([]byte, error) {
	return scene.Marshal(e.graph, scene.ProfileSave)
}

// LoadGraph 加载序列化的场景图并整体替换当前内容。
// 解析失败或结构无效时，回落到只含参考框的空图，并把失败作为可报告的
// 警告返回——编辑器保持可用，不进入破损状态。
func (e *Editor) LoadGraph(data []byte) error {
	e.imageGen++
	g, err := scene.Unmarshal(data)
	if err != nil {
		e.graph = scene.New("#ffffff")
		e.ensureGuide()
		e.selected = ""
		e.dirty = false
		e.resetHistory()
		e.emitSelection("")
		e.emitMutation()
		return fmt.Errorf("editor: 场景图加载失败，已回落为空文档: %w", err)
	}
	e.graph = g
	e.ensureGuide()
	e.selected = ""
	e.dirty = false
	e.resetHistory()
	e.emitSelection("")
	e.emitMutation()
	return nil
}

// Save 将序列化产物写入外部存储。同一时刻只允许一个在途保存请求，
// 重复提交直接拒绝而不是排队。保存失败时脏标记保持、图不回滚。
func (e *Editor) Save(store Store) error {
	if store == nil {
		return fmt.Errorf("editor: 缺少存储协作方")
	}
	if e.saving {
		return fmt.Errorf("editor: 已有保存请求在途")
	}
	data, err := e.Serialize()
	if err != nil {
		return err
	}
	e.saving = true
	err = store.Save(data)
	e.saving = false
	if err != nil {
		return fmt.Errorf("editor: 保存失败: %w", err)
	}
	e.dirty = false
	return nil
}

// mutableByID 查找允许被编辑操作触达的元素；参考框不在此列。
func (e *Editor) mutableByID(id string) (scene.Element, error) {
	el := e.graph.ByID(id)
	if el == nil {
		return nil, fmt.Errorf("editor: 元素 %q 不存在", id)
	}
	if el.Common().ExcludeFromExport {
		return nil, fmt.Errorf("editor: 页面边界参考框不可编辑")
	}
	return el, nil
}

// ensureGuide 保证页面边界参考框存在且处于最底层。
// 参考框编辑时可见、永不导出，也不可被任何编辑操作选中、删除或换序。
func (e *Editor) ensureGuide() {
	els := e.graph.Elements()
	if len(els) > 0 && els[0].Common().ExcludeFromExport {
		return
	}
	guide := &scene.Rect{
		Base: scene.Base{
			Name:              "page_border",
			ScaleX:            1,
			ScaleY:            1,
			Opacity:           1,
			Selectable:        false,
			Evented:           false,
			ExcludeFromExport: true,
		},
		Width:       e.pageW,
		Height:      e.pageH,
		Stroke:      "#94a3b8",
		StrokeWidth: 1,
	}
	_ = e.graph.Prepend(guide)
}

func (e *Editor) emitSelection(id string) {
	if e.OnSelectionChanged != nil {
		e.OnSelectionChanged(id)
	}
}

func (e *Editor) emitMutation() {
	if e.OnStructuralMutation != nil {
		e.OnStructuralMutation()
	}
}
