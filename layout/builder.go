package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/tax"
	"github.com/luocy7/gstpress/template"
)

// 页面几何常量（pt）。595×842 即 A4。
const (
	pageWidth  = template.PageWidth
	pageHeight = template.PageHeight
	pageMargin = template.Margin

	headerRuleHeight = 6.0  // 顶部强调色横条
	tableHeadHeight  = 22.0 // 表头行高
	itemRowHeight    = 20.0 // 商品行高
	totalsRowHeight  = 16.0 // 合计区每行高
	footerReserve    = 36.0 // 页底预留（页码区）
	blockSpacing     = 10.0
)

// BuildOptions 配置布局阶段的可选输入。
type BuildOptions struct {
	// Background 是编辑器导出的场景图。仅作为首页的装饰性背景绘制，
	// 打印出的金额始终由发票数据重新推导，与场景图中的文字无关。
	Background *scene.Graph
}

// Build 根据发票、商家与模板设置生成分页布局结果。
// 自上而下排版，商品表逐行、合计区与页脚区各自独立做分页检查。
func Build(inv *Invoice, company template.Company, s template.Settings, opts BuildOptions) (*Result, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if company.Name == "" {
		return nil, fmt.Errorf("layout: 商家缺少名称")
	}

	b := &builder{
		collector: newPageCollector(pageWidth, pageHeight, Margin{
			Top: pageMargin, Right: pageMargin, Bottom: pageMargin, Left: pageMargin,
		}),
		inv:     inv,
		company: company,
		s:       s,
		accent:  parseColor(s.AccentColor, Color{R: 37, G: 99, B: 235}),
		text:    parseColor(s.TextColor, Color{R: 30, G: 41, B: 59}),
		muted:   parseColor(s.MutedColor, Color{R: 100, G: 116, B: 139}),
	}
	b.cursorY = b.collector.margin.Top

	if opts.Background != nil {
		b.drawBackground(opts.Background)
	}
	b.drawHeader()
	b.drawCustomer()
	if err := b.drawTable(); err != nil {
		return nil, err
	}
	b.drawTotals()
	b.drawFooter()

	pages := b.collector.pages()
	stampPageNumbers(pages, b.muted)

	return &Result{
		Pages: pages,
		Meta: DocumentMeta{
			Title:   s.Title + " " + inv.Number,
			Author:  company.Name,
			Subject: s.Title,
			Creator: "gstpress",
		},
	}, nil
}

type builder struct {
	collector *pageCollector
	inv       *Invoice
	company   template.Company
	s         template.Settings

	cursorY float64
	accent  Color
	text    Color
	muted   Color
}

// ensureSpace 在当前页剩余空间不足时换页。
func (b *builder) ensureSpace(height float64) {
	if b.cursorY+height <= b.collector.maxContentY() {
		return
	}
	b.collector.newPage()
	b.cursorY = b.collector.margin.Top
}

// drawBackground 把编辑器定制的场景图作为首页装饰绘制。
// 只取可导出的矩形与线条，文本不参与（打印文本始终来自发票数据）。
func (b *builder) drawBackground(g *scene.Graph) {
	acc := b.collector.curr()
	for _, el := range g.Elements() {
		base := el.Common()
		if base.ExcludeFromExport {
			continue
		}
		switch t := el.(type) {
		case *scene.Rect:
			r := Rect{
				X:      base.Left,
				Y:      base.Top,
				Width:  t.Width * base.ScaleX,
				Height: t.Height * base.ScaleY,
			}
			if t.Fill != "" {
				c := parseColor(t.Fill, Color{})
				r.FillColor = &c
			}
			if t.Stroke != "" {
				c := parseColor(t.Stroke, Color{})
				r.StrokeColor = &c
				r.StrokeWidth = t.StrokeWidth
			}
			acc.rects = append(acc.rects, r)
		case *scene.Line:
			acc.lines = append(acc.lines, Line{
				X1:    base.Left + t.X1*base.ScaleX,
				Y1:    base.Top + t.Y1*base.ScaleY,
				X2:    base.Left + t.X2*base.ScaleX,
				Y2:    base.Top + t.Y2*base.ScaleY,
				Color: parseColor(t.Stroke, Color{}),
				Width: t.StrokeWidth,
			})
		}
	}
}

// drawHeader 绘制首页抬头：强调色横条、商家信息与右侧的单据标题。
func (b *builder) drawHeader() {
	acc := b.collector.curr()
	accent := b.accent
	acc.rects = append(acc.rects, Rect{
		X: 0, Y: 0, Width: pageWidth, Height: headerRuleHeight, FillColor: &accent,
	})

	left := b.collector.margin.Left
	y := b.cursorY + headerRuleHeight
	acc.texts = append(acc.texts, TextBox{
		Content: b.company.Name, X: left, Y: y, Width: 320,
		Font: "bold", FontSize: 16, Color: b.text,
	})
	y += 20
	if addr := joinNonEmpty([]string{b.company.Address1, b.company.Address2}, ", "); addr != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: addr, X: left, Y: y, Width: 320,
			Font: "regular", FontSize: 9, Color: b.muted,
		})
		y += 14
	}
	if contact := contactLine(b.company); contact != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: contact, X: left, Y: y, Width: 320,
			Font: "regular", FontSize: 9, Color: b.muted,
		})
		y += 14
	}
	if b.s.ShowGSTINHeader && b.company.GSTIN != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: "GSTIN: " + b.company.GSTIN, X: left, Y: y, Width: 320,
			Font: "bold", FontSize: 9, Color: b.text,
		})
		y += 14
	}

	// 右侧：标题与发票元信息
	metaX := pageWidth - b.collector.margin.Right - 180
	acc.texts = append(acc.texts, TextBox{
		Content: b.s.Title, X: metaX, Y: b.cursorY + headerRuleHeight, Width: 180,
		Font: "bold", FontSize: 16, Color: b.text, Align: "right",
	})
	acc.texts = append(acc.texts, TextBox{
		Content: b.s.InvoiceNoLabel + " " + b.inv.Number,
		X:       metaX, Y: b.cursorY + headerRuleHeight + 24, Width: 180,
		Font: "regular", FontSize: 9, Color: b.text, Align: "right",
	})
	acc.texts = append(acc.texts, TextBox{
		Content: b.s.DateLabel + " " + b.inv.Date,
		X:       metaX, Y: b.cursorY + headerRuleHeight + 38, Width: 180,
		Font: "regular", FontSize: 9, Color: b.text, Align: "right",
	})

	b.cursorY = math.Max(y, b.cursorY+headerRuleHeight+52) + blockSpacing
	acc.lines = append(acc.lines, Line{
		X1: left, Y1: b.cursorY, X2: pageWidth - b.collector.margin.Right, Y2: b.cursorY,
		Color: b.muted, Width: 0.6,
	})
	b.cursorY += blockSpacing
}

// drawCustomer 绘制收票方区块。
func (b *builder) drawCustomer() {
	acc := b.collector.curr()
	left := b.collector.margin.Left
	cust := b.inv.Customer

	acc.texts = append(acc.texts, TextBox{
		Content: b.s.BillToLabel, X: left, Y: b.cursorY, Width: 160,
		Font: "bold", FontSize: 9, Color: b.muted,
	})
	b.cursorY += 14
	acc.texts = append(acc.texts, TextBox{
		Content: cust.Name, X: left, Y: b.cursorY, Width: 260,
		Font: "bold", FontSize: 11, Color: b.text,
	})
	b.cursorY += 15
	for _, line := range []string{cust.Address, cust.GSTIN, cust.Phone} {
		if line == "" {
			continue
		}
		acc.texts = append(acc.texts, TextBox{
			Content: line, X: left, Y: b.cursorY, Width: 260,
			Font: "regular", FontSize: 9, Color: b.muted,
		})
		b.cursorY += 13
	}
	b.cursorY += blockSpacing
}

// drawTableHead 在当前游标处绘制表头行并推进游标。
func (b *builder) drawTableHead() {
	acc := b.collector.curr()
	accent := b.accent
	white := Color{R: 255, G: 255, B: 255}
	acc.rects = append(acc.rects, Rect{
		X: b.collector.margin.Left, Y: b.cursorY,
		Width:     pageWidth - b.collector.margin.Left - b.collector.margin.Right,
		Height:    tableHeadHeight,
		FillColor: &accent,
	})
	for _, col := range template.TableColumns {
		acc.texts = append(acc.texts, TextBox{
			Content: col.Label, X: col.X, Y: b.cursorY + 6, Width: col.Width,
			Font: "bold", FontSize: 9, Color: white, Align: col.Align,
		})
	}
	b.cursorY += tableHeadHeight + 4
}

// drawTable 绘制商品表。每行前独立做分页检查；换页后重绘表头。
func (b *builder) drawTable() error {
	b.ensureSpace(tableHeadHeight + itemRowHeight)
	b.drawTableHead()

	for i, it := range b.inv.Items {
		pageBefore := b.collector.current
		b.ensureSpace(itemRowHeight)
		if b.collector.current != pageBefore {
			b.drawTableHead()
		}

		amount := it.line().Amount()
		base, gst := tax.Decompose(amount, it.GSTPercent)
		cells := []string{
			strconv.Itoa(i + 1),
			it.Description,
			trimFloat(it.Quantity),
			money(it.Rate),
			money(base),
			money(gst),
			money(amount),
		}
		if len(cells) != len(template.TableColumns) {
			return fmt.Errorf("layout: 表列数不匹配")
		}
		acc := b.collector.curr()
		for c, col := range template.TableColumns {
			acc.texts = append(acc.texts, TextBox{
				Content: cells[c], X: col.X, Y: b.cursorY + 4, Width: col.Width,
				Font: "regular", FontSize: 9, Color: b.text, Align: col.Align,
			})
		}
		b.cursorY += itemRowHeight
		acc.lines = append(acc.lines, Line{
			X1: b.collector.margin.Left, Y1: b.cursorY,
			X2: pageWidth - b.collector.margin.Right, Y2: b.cursorY,
			Color: Color{R: 226, G: 232, B: 240}, Width: 0.4,
		})
		b.cursorY += 2
	}
	b.cursorY += blockSpacing
	return nil
}

// drawTotals 绘制合计区。金额全部来自 tax.Totals 的重新推导。
func (b *builder) drawTotals() {
	sum := tax.Totals(b.inv.lines(), b.inv.DiscountPercent)

	type row struct {
		label string
		value float64
		bold  bool
		show  bool
	}
	rows := []row{
		{"Taxable Amount", sum.BaseTotal, false, true},
		{"Total GST", sum.TaxTotal, false, true},
		{"Subtotal", sum.Subtotal, false, true},
		{"Discount", -sum.DiscountAmount, false, sum.DiscountAmount != 0},
		{"Round Off", sum.RoundOff, false, sum.RoundOff != 0},
		{"Grand Total", sum.GrandTotal, true, true},
	}
	var height float64
	for _, r := range rows {
		if r.show {
			height += totalsRowHeight
		}
	}
	b.ensureSpace(height + blockSpacing)

	acc := b.collector.curr()
	labelX := template.TableColumns[4].X
	valueCol := template.TableColumns[len(template.TableColumns)-1]
	for _, r := range rows {
		if !r.show {
			continue
		}
		font := "regular"
		size := 9.0
		color := b.text
		if r.bold {
			font = "bold"
			size = 11
			acc.lines = append(acc.lines, Line{
				X1: labelX, Y1: b.cursorY - 2,
				X2: valueCol.X + valueCol.Width, Y2: b.cursorY - 2,
				Color: b.text, Width: 0.8,
			})
		}
		acc.texts = append(acc.texts, TextBox{
			Content: r.label, X: labelX, Y: b.cursorY, Width: valueCol.X - labelX - 8,
			Font: font, FontSize: size, Color: color,
		})
		acc.texts = append(acc.texts, TextBox{
			Content: money(r.value), X: valueCol.X, Y: b.cursorY, Width: valueCol.Width,
			Font: font, FontSize: size, Color: color, Align: "right",
		})
		b.cursorY += totalsRowHeight
	}
	b.cursorY += blockSpacing
}

// drawFooter 绘制页脚区：银行信息、条款与签名。整块独立做分页检查。
func (b *builder) drawFooter() {
	left := b.collector.margin.Left
	right := pageWidth - b.collector.margin.Right

	bank := b.bankBlock()
	terms := b.termsBlock()

	var height float64 = 14
	if bank != "" {
		height += 30
	}
	if terms != "" {
		height += 30
	}
	if b.inv.Notes != "" {
		height += 26
	}
	if b.s.ShowSignature {
		height += 44
	}
	b.ensureSpace(height)

	acc := b.collector.curr()
	acc.lines = append(acc.lines, Line{
		X1: left, Y1: b.cursorY, X2: right, Y2: b.cursorY,
		Color: b.muted, Width: 0.6,
	})
	b.cursorY += 12

	if bank != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: "Bank Details", X: left, Y: b.cursorY, Width: 160,
			Font: "bold", FontSize: 9, Color: b.text,
		})
		acc.texts = append(acc.texts, TextBox{
			Content: bank, X: left, Y: b.cursorY + 13, Width: 280,
			Font: "regular", FontSize: 9, Color: b.muted,
		})
		b.cursorY += 30
	}
	if terms != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: "Terms & Conditions", X: left, Y: b.cursorY, Width: 160,
			Font: "bold", FontSize: 9, Color: b.text,
		})
		acc.texts = append(acc.texts, TextBox{
			Content: terms, X: left, Y: b.cursorY + 13, Width: 320,
			Font: "regular", FontSize: 8, Color: b.muted,
		})
		b.cursorY += 30
	}
	if b.inv.Notes != "" {
		acc.texts = append(acc.texts, TextBox{
			Content: b.inv.Notes, X: left, Y: b.cursorY, Width: 320,
			Font: "regular", FontSize: 8, Color: b.muted,
		})
		b.cursorY += 26
	}
	if b.s.ShowSignature {
		sigX := right - 150
		acc.texts = append(acc.texts, TextBox{
			Content: "For " + b.company.Name, X: sigX, Y: b.cursorY, Width: 150,
			Font: "regular", FontSize: 9, Color: b.text, Align: "center",
		})
		b.cursorY += 30
		acc.lines = append(acc.lines, Line{
			X1: sigX, Y1: b.cursorY, X2: right, Y2: b.cursorY,
			Color: b.text, Width: 0.6,
		})
		acc.texts = append(acc.texts, TextBox{
			Content: "Authorised Signatory", X: sigX, Y: b.cursorY + 4, Width: 150,
			Font: "regular", FontSize: 8, Color: b.muted, Align: "center",
		})
		b.cursorY += 14
	}
}

func (b *builder) bankBlock() string {
	if !b.s.ShowBank {
		return ""
	}
	parts := []string{}
	if b.s.BankName != nil && *b.s.BankName != "" {
		parts = append(parts, *b.s.BankName)
	}
	if b.s.BankAccount != nil && *b.s.BankAccount != "" {
		parts = append(parts, "A/C "+*b.s.BankAccount)
	}
	if b.s.BankIFSC != nil && *b.s.BankIFSC != "" {
		parts = append(parts, "IFSC "+*b.s.BankIFSC)
	}
	return strings.Join(parts, "  ·  ")
}

func (b *builder) termsBlock() string {
	if !b.s.ShowTerms {
		return ""
	}
	parts := []string{}
	if b.s.TermsLine1 != nil && *b.s.TermsLine1 != "" {
		parts = append(parts, *b.s.TermsLine1)
	}
	if b.s.TermsLine2 != nil && *b.s.TermsLine2 != "" {
		parts = append(parts, *b.s.TermsLine2)
	}
	return strings.Join(parts, "\n")
}

// stampPageNumbers 在所有页面确定后补写页码。
func stampPageNumbers(pages []Page, color Color) {
	total := len(pages)
	for i := range pages {
		pages[i].Texts = append(pages[i].Texts, TextBox{
			Content:  fmt.Sprintf("Page %d of %d", i+1, total),
			X:        0,
			Y:        pages[i].Height - footerReserve + 12,
			Width:    pages[i].Width,
			Font:     "regular",
			FontSize: 8,
			Color:    color,
			Align:    "center",
		})
	}
}

// --- 页面收集 ---

type pageAccumulator struct {
	texts  []TextBox
	rects  []Rect
	lines  []Line
	images []ImageBox
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{width: width, height: height, margin: margin}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	return pc.accs[pc.current]
}

// maxContentY 是可用内容底部（页码区之上）。
func (pc *pageCollector) maxContentY() float64 {
	return pc.height - pc.margin.Bottom - footerReserve
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Rects:  acc.rects,
			Lines:  acc.lines,
			Images: acc.images,
		}
	}
	return out
}

// --- 小工具 ---

func parseColor(value string, fallback Color) Color {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		return Color{
			R: mustHex(strings.Repeat(string(v[0]), 2)),
			G: mustHex(strings.Repeat(string(v[1]), 2)),
			B: mustHex(strings.Repeat(string(v[2]), 2)),
		}
	case 6, 8:
		return Color{R: mustHex(v[0:2]), G: mustHex(v[2:4]), B: mustHex(v[4:6])}
	default:
		return fallback
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinNonEmpty(parts []string, sep string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func contactLine(c template.Company) string {
	return joinNonEmpty([]string{c.Phone, c.Email}, " · ")
}
