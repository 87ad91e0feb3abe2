package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/luocy7/gstpress/scene"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	return New(Options{})
}

// nonGuideCount 统计参考框以外的元素数量。
func nonGuideCount(e *Editor) int {
	n := 0
	for _, el := range e.Graph().Elements() {
		if !el.Common().ExcludeFromExport {
			n++
		}
	}
	return n
}

func TestNewSessionHasOnlyGuide(t *testing.T) {
	e := newTestEditor(t)
	if e.Graph().Len() != 1 {
		t.Fatalf("新会话应只有参考框，实际 %d 个元素", e.Graph().Len())
	}
	guide := e.Graph().Elements()[0].Common()
	if !guide.ExcludeFromExport || guide.Selectable || guide.ID != "" {
		t.Fatalf("参考框状态不对: %+v", guide)
	}
	if e.Dirty() {
		t.Fatalf("新会话不应是脏的")
	}
}

func TestAddAndSelect(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加矩形失败: %v", err)
	}
	if err := e.Select(r.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	if e.Selected() != r.ID {
		t.Fatalf("Selected = %q", e.Selected())
	}
	if err := e.Select("no-such-id"); err == nil {
		t.Fatalf("选中不存在的元素应报错")
	}
	// 参考框没有 id，空 id 选择等价于取消选择
	if err := e.Select(""); err != nil {
		t.Fatalf("空 id 应等价于取消选择: %v", err)
	}
	if e.Selected() != "" {
		t.Fatalf("取消选择后 Selected = %q", e.Selected())
	}
}

func TestRemoveSelectedNoopWithoutSelection(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	before := e.Graph().Len()
	e.RemoveSelected()
	if e.Graph().Len() != before {
		t.Fatalf("无选中时删除应是空操作")
	}
}

func TestRemoveSelected(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.Select(r.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	e.RemoveSelected()
	if e.Graph().ByID(r.ID) != nil {
		t.Fatalf("删除后元素仍在")
	}
	if e.Selected() != "" {
		t.Fatalf("删除后应清除选择")
	}
}

func TestGuideImmuneToReorderAndClear(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	// 最底层的普通元素下移不会与参考框交换
	if err := e.SendBackward(r.ID); err != nil {
		t.Fatalf("下移报错: %v", err)
	}
	if e.Graph().Elements()[0].Common().ID != "" {
		t.Fatalf("参考框必须保持在最底层")
	}

	e.Clear()
	if e.Graph().Len() != 1 || !e.Graph().Elements()[0].Common().ExcludeFromExport {
		t.Fatalf("清空画布后参考框应保留")
	}
}

func TestSerializeOmitsGuide(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddTextbox("hello"); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	data, err := e.Serialize()
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if strings.Contains(string(data), "page_border") {
		t.Fatalf("序列化产物不应包含参考框")
	}
	g, err := scene.Unmarshal(data)
	if err != nil {
		t.Fatalf("产物应能反序列化: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("产物应只含文本元素，实际 %d", g.Len())
	}
}

func TestLoadGraphRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if _, err := e.AddCircle(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	data, err := e.Serialize()
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	e2 := newTestEditor(t)
	if err := e2.LoadGraph(data); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if nonGuideCount(e2) != 2 {
		t.Fatalf("加载后应有 2 个元素，实际 %d", nonGuideCount(e2))
	}
	if e2.Dirty() {
		t.Fatalf("刚加载的文档不应是脏的")
	}
	if !e2.Graph().Elements()[0].Common().ExcludeFromExport {
		t.Fatalf("加载后参考框应被重新放回最底层")
	}
}

func TestLoadGraphMalformedFallsBack(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	err := e.LoadGraph([]byte(`{"version":`))
	if err == nil {
		t.Fatalf("坏数据应返回警告错误")
	}
	if nonGuideCount(e) != 0 {
		t.Fatalf("坏数据加载后应回落为空文档")
	}
	// 编辑器保持可用
	if _, err := e.AddCircle(); err != nil {
		t.Fatalf("回落后编辑器应保持可用: %v", err)
	}
}

type memStore struct {
	data []byte
	err  error
}

func (m *memStore) Save(data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data = data
	return nil
}

func TestDirtyAndSave(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if !e.Dirty() {
		t.Fatalf("变更后应置脏")
	}

	store := &memStore{}
	if err := e.Save(store); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if e.Dirty() {
		t.Fatalf("保存成功后应清除脏标记")
	}
	if len(store.data) == 0 {
		t.Fatalf("存储方未收到数据")
	}

	// 保存失败：脏标记保持
	if _, err := e.AddCircle(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	store.err = errors.New("network down")
	if err := e.Save(store); err == nil {
		t.Fatalf("存储失败应向上返回")
	}
	if !e.Dirty() {
		t.Fatalf("保存失败后脏标记应保持")
	}
}

// reentrantStore 在保存期间再次触发保存，模拟双重提交。
type reentrantStore struct {
	editor *Editor
	second error
}

func (r *reentrantStore) Save(data []byte) error {
	r.second = r.editor.Save(&memStore{})
	return nil
}

func TestSaveSingleInFlight(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	store := &reentrantStore{editor: e}
	if err := e.Save(store); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if store.second == nil {
		t.Fatalf("在途保存期间的重复提交应被拒绝")
	}
}

func TestMutationEvents(t *testing.T) {
	e := newTestEditor(t)
	mutations := 0
	selections := []string{}
	e.OnStructuralMutation = func() { mutations++ }
	e.OnSelectionChanged = func(id string) { selections = append(selections, id) }

	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if mutations != 1 {
		t.Fatalf("添加后应触发一次结构事件，实际 %d", mutations)
	}
	if err := e.Select(r.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	e.RemoveSelected()
	if len(selections) != 2 || selections[0] != r.ID || selections[1] != "" {
		t.Fatalf("选择事件序列 = %v", selections)
	}
	if mutations != 2 {
		t.Fatalf("删除后应再触发一次结构事件，实际 %d", mutations)
	}
}

func TestZOrderThroughEditor(t *testing.T) {
	e := newTestEditor(t)
	a, _ := e.AddRect()
	b, _ := e.AddCircle()
	c, _ := e.AddLine()

	if err := e.SendBackward(c.ID); err != nil {
		t.Fatalf("下移失败: %v", err)
	}
	els := e.Graph().Elements()
	// [guide, a, c, b]
	want := []string{"", a.ID, c.ID, b.ID}
	for i, el := range els {
		if el.Common().ID != want[i] {
			t.Fatalf("层级 %d = %q, 期望 %q", i, el.Common().ID, want[i])
		}
	}

	if err := e.BringForward(fmt.Sprintf("missing-%s", a.ID)); err == nil {
		t.Fatalf("不存在的元素应报错")
	}
}
