package scene

import "fmt"

// Graph 表示一页可打印文档的有序元素集合。
// 顺序即画家算法的 z 序（靠后的元素绘制在上层），也是"上移一层/下移一层"
// 操作唯一依据的排序。元素的同一性只看 id，属性相等不代表可互换。
type Graph struct {
	Version    string
	Background string // 背景色（hex）
	els        []Element
}

// FormatVersion 写入序列化产物的版本号。
const FormatVersion = "1.0"

// New 创建一个空场景图。
func New(background string) *Graph {
	return &Graph{Version: FormatVersion, Background: background}
}

// Len 返回元素数量（含页面边界参考框，若已加入）。
func (g *Graph) Len() int { return len(g.els) }

// Elements 按 z 序返回内部切片，调用方不得修改。
func (g *Graph) Elements() []Element { return g.els }

// Append 在最上层追加元素。除页面边界参考框外，id 不能为空且在图内唯一。
func (g *Graph) Append(el Element) error {
	b := el.Common()
	if b.ID == "" && !b.ExcludeFromExport {
		return fmt.Errorf("scene: 元素缺少 id")
	}
	if b.ID != "" && g.ByID(b.ID) != nil {
		return fmt.Errorf("scene: id %q 已存在", b.ID)
	}
	g.els = append(g.els, el)
	return nil
}

// Prepend 在最底层插入元素，用于放置页面边界参考框。
func (g *Graph) Prepend(el Element) error {
	b := el.Common()
	if b.ID != "" && g.ByID(b.ID) != nil {
		return fmt.Errorf("scene: id %q 已存在", b.ID)
	}
	g.els = append([]Element{el}, g.els...)
	return nil
}

// ByID 按 id 查找元素，找不到返回 nil。空 id 永远查不到。
func (g *Graph) ByID(id string) Element {
	if id == "" {
		return nil
	}
	for _, el := range g.els {
		if el.Common().ID == id {
			return el
		}
	}
	return nil
}

// IndexOf 返回元素在 z 序中的位置，找不到返回 -1。
func (g *Graph) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, el := range g.els {
		if el.Common().ID == id {
			return i
		}
	}
	return -1
}

// RemoveByID 删除指定元素，返回是否删除成功。
func (g *Graph) RemoveByID(id string) bool {
	idx := g.IndexOf(id)
	if idx < 0 {
		return false
	}
	g.els = append(g.els[:idx], g.els[idx+1:]...)
	return true
}

// BringForward 与上一层相邻元素交换，已在最上层时为空操作。
func (g *Graph) BringForward(id string) bool {
	idx := g.IndexOf(id)
	if idx < 0 || idx >= len(g.els)-1 {
		return false
	}
	g.els[idx], g.els[idx+1] = g.els[idx+1], g.els[idx]
	return true
}

// SendBackward 与下一层相邻元素交换，已在最底层时为空操作。
func (g *Graph) SendBackward(id string) bool {
	idx := g.IndexOf(id)
	if idx <= 0 {
		return false
	}
	g.els[idx], g.els[idx-1] = g.els[idx-1], g.els[idx]
	return true
}

// Snapshot 以历史档位序列化整图，作为撤销/重做的不透明快照。
func (g *Graph) Snapshot() ([]byte, error) {
	return Marshal(g, ProfileHistory)
}

// Restore 用快照整体替换图内容。参考框不在快照中，调用方需自行重新放置。
func (g *Graph) Restore(data []byte) error {
	ng, err := Unmarshal(data)
	if err != nil {
		return err
	}
	g.Version = ng.Version
	g.Background = ng.Background
	g.els = ng.els
	return nil
}
