package editor

import "testing"

func TestUndoRedoRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if !e.CanUndo() || e.CanRedo() {
		t.Fatalf("变更后应可撤销、不可重做")
	}

	e.Undo()
	if nonGuideCount(e) != 0 {
		t.Fatalf("撤销后画布应为空，实际 %d 个元素", nonGuideCount(e))
	}
	if !e.CanRedo() {
		t.Fatalf("撤销后应可重做")
	}

	e.Redo()
	if e.Graph().ByID(r.ID) == nil {
		t.Fatalf("重做后元素应回来")
	}
}

func TestUndoRedoBoundaryNoops(t *testing.T) {
	e := newTestEditor(t)
	e.Undo() // 栈底
	if nonGuideCount(e) != 0 {
		t.Fatalf("空会话撤销应是空操作")
	}
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	e.Redo() // 栈顶
	if nonGuideCount(e) != 1 {
		t.Fatalf("栈顶重做应是空操作")
	}
}

func TestNewMutationDiscardsFuture(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if _, err := e.AddCircle(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	e.Undo()
	if !e.CanRedo() {
		t.Fatalf("撤销后应可重做")
	}

	// 撤销后的新变更丢弃"未来"
	if _, err := e.AddLine(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if e.CanRedo() {
		t.Fatalf("新变更后不应再可重做")
	}
}

func TestHistoryBounded(t *testing.T) {
	e := newTestEditor(t)
	for i := 0; i < 60; i++ {
		if _, err := e.AddRect(); err != nil {
			t.Fatalf("第 %d 次添加失败: %v", i, err)
		}
	}
	if e.HistoryLen() != maxHistory {
		t.Fatalf("HistoryLen = %d, 期望 %d", e.HistoryLen(), maxHistory)
	}

	// 51 个元素之后最旧的快照已被淘汰：一次撤销回到 59 个元素的状态
	e.Undo()
	if nonGuideCount(e) != 59 {
		t.Fatalf("撤销后应有 59 个元素，实际 %d", nonGuideCount(e))
	}

	// 一路撤销到栈底也只能回到被淘汰边界，不是空画布
	for e.CanUndo() {
		e.Undo()
	}
	if nonGuideCount(e) != 11 {
		t.Fatalf("栈底状态应有 11 个元素，实际 %d", nonGuideCount(e))
	}
}

func TestUndoClearsSelectionAndMarksDirty(t *testing.T) {
	e := newTestEditor(t)
	r, err := e.AddRect()
	if err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	if err := e.Select(r.ID); err != nil {
		t.Fatalf("选中失败: %v", err)
	}
	if err := e.Save(&memStore{}); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	e.Undo()
	if e.Selected() != "" {
		t.Fatalf("还原后选择应被清除")
	}
	if !e.Dirty() {
		t.Fatalf("撤销相对上次保存是变化，应置脏")
	}
}

func TestRestoreDoesNotPolluteHistory(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	lenBefore := e.HistoryLen()
	e.Undo()
	e.Redo()
	if e.HistoryLen() != lenBefore {
		t.Fatalf("撤销/重做不应新增历史条目: %d → %d", lenBefore, e.HistoryLen())
	}
}

func TestGuideSurvivesRestore(t *testing.T) {
	e := newTestEditor(t)
	if _, err := e.AddRect(); err != nil {
		t.Fatalf("添加失败: %v", err)
	}
	e.Undo()
	els := e.Graph().Elements()
	if len(els) == 0 || !els[0].Common().ExcludeFromExport {
		t.Fatalf("还原后参考框应被重新放回最底层")
	}
}
