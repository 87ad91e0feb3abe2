package editor

// 撤销/重做：单条线性快照栈加一个游标，不支持分支。
// 每次完成的结构变更之后压入一张整图快照（历史档位序列化）；
// 撤销后的新变更会丢弃游标之后的全部"未来"快照。
// 栈上限 50 张，压入第 51 张时淘汰最旧的一张。

const maxHistory = 50

// HistoryLen 返回当前可取回的快照数量。
func (e *Editor) HistoryLen() int { return len(e.history) }

// CanUndo 报告是否还能撤销。
func (e *Editor) CanUndo() bool { return e.cursor > 0 }

// CanRedo 报告是否还能重做。
func (e *Editor) CanRedo() bool { return e.cursor < len(e.history)-1 }

// Undo 撤销一步。已在栈底时为空操作（不是错误）。
func (e *Editor) Undo() {
	if e.cursor <= 0 {
		return
	}
	e.cursor--
	e.restoreSnapshot(e.history[e.cursor])
}

// Redo 重做一步。已在栈顶时为空操作。
func (e *Editor) Redo() {
	if e.cursor >= len(e.history)-1 {
		return
	}
	e.cursor++
	e.restoreSnapshot(e.history[e.cursor])
}

// afterMutation 在每次完成的结构变更后收尾：置脏、截断未来、压栈、发事件。
// 撤销/重做触发的程序化还原期间（restoring）不压栈，防止撤销污染自己的栈。
func (e *Editor) afterMutation() {
	if e.restoring {
		return
	}
	e.dirty = true
	e.history = e.history[:e.cursor+1]
	snap, err := e.graph.Snapshot()
	if err != nil {
		// 快照只可能因序列化失败而出错，图本身仍一致；该次不入栈
		e.emitMutation()
		return
	}
	e.history = append(e.history, snap)
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
	}
	e.cursor = len(e.history) - 1
	e.emitMutation()
}

// restoreSnapshot 用快照整体重建场景图。对调用方而言还原是原子的：
// 先完整解析再替换，任何中间态都不可观察；期间的再入保护（restoring）
// 保证还原过程自身不会产生新的历史条目。
func (e *Editor) restoreSnapshot(snap []byte) {
	e.restoring = true
	defer func() { e.restoring = false }()

	if err := e.graph.Restore(snap); err != nil {
		// 快照由本引擎自己生成，解析失败在正常运行中不可达；保持现状
		return
	}
	e.ensureGuide()
	if e.selected != "" {
		e.selected = ""
		e.emitSelection("")
	}
	// 还原相对上次保存仍是变化，脏标记照常置位
	e.dirty = true
	e.emitMutation()
}

// resetHistory 以当前图为唯一条目重建历史（创建会话或加载文档时）。
func (e *Editor) resetHistory() {
	e.history = e.history[:0]
	snap, err := e.graph.Snapshot()
	if err != nil {
		e.cursor = 0
		return
	}
	e.history = append(e.history, snap)
	e.cursor = 0
}
