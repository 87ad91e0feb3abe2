package template

import (
	"fmt"
	"strings"

	"github.com/luocy7/gstpress/binding"
	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/tax"
)

// 模板编译器：把一组具名的样式/内容设置加公司记录编译成完整定位的场景图。
// 这是布局预览生成器，不做数据绑定渲染——输出里永远是代表性的占位内容
// （示例客户、两行示例商品、示例合计），真实单据数据不会在编译期代入。
//
// 固定区域自上而下排布，携带一个纵向游标 y。区域高度是编译器常量：
// 条件子元素只在固定高度带内移动内容位置，不改变带高；唯一例外是页脚带
// （高度为页面剩余空间）与条款子块（任一条款行非空时游标额外加 60）。
// 对相同的 settings/company 输入，输出逐字节一致：元素顺序稳定，
// id 按角色名生成（"header_bg"、"company_name"、"row_product_0"……），
// 改设置后重新编译得到的是可 diff、可预测的图。

// 页面与区域常量（单位 pt）。只有颜色、字体、文本与显示开关由设置驱动，
// 这些数值不可配置。
const (
	PageWidth  = 595.0
	PageHeight = 842.0
	Margin     = 28.0

	HeaderBand     = 160.0 // 页眉带高
	LogoShift      = 46.0  // 显示 logo 时公司名的下移量
	CustomerBand   = 76.0  // 客户信息带高
	TableHeaderRow = 24.0  // 表头行高
	ItemRow        = 36.0  // 每个商品行高
	FooterStartY   = 650.0 // 页脚带起点；带高 = PageHeight - FooterStartY - Margin
	TermsIncrement = 60.0  // 条款子块对页脚游标的增量
	TotalsRow      = 16.0  // 合计区每行高
)

// 表格列：x 偏移、宽度与对齐均为编译器常量，布局包与此保持一致。
type Column struct {
	ID    string
	Label string
	X     float64
	Width float64
	Align string
}

// TableColumns 按从左到右的顺序列出商品表的列定义。
var TableColumns = []Column{
	{ID: "col_sno", Label: "#", X: 28, Width: 24, Align: "left"},
	{ID: "col_desc", Label: "Item", X: 56, Width: 200, Align: "left"},
	{ID: "col_qty", Label: "Qty", X: 260, Width: 40, Align: "right"},
	{ID: "col_rate", Label: "Rate", X: 304, Width: 64, Align: "right"},
	{ID: "col_taxable", Label: "Taxable", X: 372, Width: 70, Align: "right"},
	{ID: "col_gst", Label: "GST", X: 446, Width: 50, Align: "right"},
	{ID: "col_amount", Label: "Amount", X: 500, Width: 67, Align: "right"},
}

// 预览用的示例数据，全部为常量以保证编译结果可复现。
var (
	sampleCustomerName    = "Sample Customer Pvt. Ltd."
	sampleCustomerAddress = "12 Market Road\nPune, MH 411001"
	sampleInvoiceNo       = "INV-0042"
	sampleInvoiceDate     = "01/04/2026"
	sampleDescriptions    = []string{"Sample Product A", "Sample Service B"}
	sampleItems           = []tax.LineItem{
		{Quantity: 1, Rate: 1180, GSTPercent: 18},
		{Quantity: 2, Rate: 590, GSTPercent: 12},
	}
)

// Compile 把设置与公司记录编译成场景图。纯函数：相同输入产出逐字节相同的图。
func Compile(s Settings, company Company) (*scene.Graph, error) {
	s = normalize(s)
	data := map[string]any{"company": company}
	g := scene.New("#ffffff")

	add := func(el scene.Element) error { return g.Append(el) }

	// --- 页眉带 [0, HeaderBand) ---
	headerBG := &scene.Rect{
		Base:   scene.DefaultBase("header_bg", "页眉底色"),
		Width:  PageWidth,
		Height: HeaderBand,
		Fill:   s.AccentColor,
	}
	if err := add(headerBG); err != nil {
		return nil, err
	}

	nameTop := Margin
	if s.ShowLogo && company.LogoRef != "" {
		logo := &scene.Image{
			Base:   scene.DefaultBase("company_logo", "公司 Logo"),
			Width:  64,
			Height: 64,
			Src:    company.LogoRef,
		}
		logo.Left = Margin
		logo.Top = Margin
		if err := add(logo); err != nil {
			return nil, err
		}
		nameTop += LogoShift
	}

	if err := add(textbox("company_name", Margin, nameTop, 320,
		company.Name, 20, "bold", s.TextColor, "left", s)); err != nil {
		return nil, err
	}
	address := joinNonEmpty("\n", company.Address1, company.Address2, contactLine(company))
	if err := add(textbox("company_address", Margin, nameTop+26, 320,
		address, 9, "normal", s.MutedColor, "left", s)); err != nil {
		return nil, err
	}
	if s.ShowGSTINHeader && company.GSTIN != "" {
		if err := add(textbox("company_gstin", Margin, nameTop+62, 320,
			"GSTIN: "+company.GSTIN, 9, "bold", s.TextColor, "left", s)); err != nil {
			return nil, err
		}
	}
	if err := add(textbox("doc_title", PageWidth-Margin-180, Margin, 180,
		binding.Interpolate(s.Title, data), 16, "bold", s.TextColor, "right", s)); err != nil {
		return nil, err
	}

	// --- 客户信息带 [HeaderBand, HeaderBand+CustomerBand) ---
	y := HeaderBand + 16.0
	if err := add(textbox("bill_to_label", Margin, y, 120,
		s.BillToLabel, 9, "bold", s.MutedColor, "left", s)); err != nil {
		return nil, err
	}
	if err := add(textbox("customer_name", Margin, y+14, 240,
		sampleCustomerName, 11, "bold", s.TextColor, "left", s)); err != nil {
		return nil, err
	}
	if err := add(textbox("customer_address", Margin, y+30, 240,
		sampleCustomerAddress, 9, "normal", s.MutedColor, "left", s)); err != nil {
		return nil, err
	}
	meta := s.InvoiceNoLabel + ": " + sampleInvoiceNo + "\n" + s.DateLabel + ": " + sampleInvoiceDate
	if err := add(textbox("invoice_meta", PageWidth-Margin-160, y, 160,
		meta, 9, "normal", s.TextColor, "right", s)); err != nil {
		return nil, err
	}
	y = HeaderBand + CustomerBand + 24

	// --- 商品表 ---
	tableWidth := PageWidth - 2*Margin
	headBG := &scene.Rect{
		Base:   scene.DefaultBase("table_header_bg", "表头底色"),
		Width:  tableWidth,
		Height: TableHeaderRow,
		Fill:   s.AccentColor,
	}
	headBG.Left = Margin
	headBG.Top = y
	if err := add(headBG); err != nil {
		return nil, err
	}
	for _, col := range TableColumns {
		if err := add(textbox(col.ID, col.X, y+6, col.Width,
			col.Label, 9, "bold", s.TextColor, col.Align, s)); err != nil {
			return nil, err
		}
	}
	y += TableHeaderRow

	for i, it := range sampleItems {
		amount := it.Amount()
		base, gst := tax.Decompose(amount, it.GSTPercent)
		cells := []struct {
			col  int
			text string
		}{
			{0, fmt.Sprintf("%d", i+1)},
			{1, sampleDescriptions[i]},
			{2, fmt.Sprintf("%g", it.Quantity)},
			{3, money(it.Rate)},
			{4, money(base)},
			{5, money(gst) + fmt.Sprintf(" (%g%%)", it.GSTPercent)},
			{6, money(amount)},
		}
		for _, c := range cells {
			col := TableColumns[c.col]
			id := rowID(col.ID, i)
			if err := add(textbox(id, col.X, y+10, col.Width,
				c.text, 9, "normal", s.TextColor, col.Align, s)); err != nil {
				return nil, err
			}
		}
		sep := &scene.Line{
			Base:        scene.DefaultBase(fmt.Sprintf("row_line_%d", i), "行分隔线"),
			X2:          tableWidth,
			Stroke:      s.MutedColor,
			StrokeWidth: 0.5,
		}
		sep.Left = Margin
		sep.Top = y + ItemRow
		if err := add(sep); err != nil {
			return nil, err
		}
		y += ItemRow
	}

	// --- 合计区（右对齐两列） ---
	y += 12
	sum := tax.Totals(sampleItems, 0)
	rows := []struct {
		id    string
		label string
		value string
	}{
		{"total_taxable", "Taxable Value", money(sum.NetBase)},
		{"total_gst", "Total GST", money(sum.NetTax)},
		{"total_subtotal", "Subtotal", money(sum.Subtotal)},
		{"total_discount", "Discount", money(sum.DiscountAmount)},
		{"total_roundoff", "Round Off", money(sum.RoundOff)},
		{"total_grand", "Grand Total", money(sum.GrandTotal)},
	}
	labelX := TableColumns[4].X
	valueCol := TableColumns[6]
	for _, row := range rows {
		weight := "normal"
		if row.id == "total_grand" {
			weight = "bold"
		}
		if err := add(textbox(row.id+"_label", labelX, y, 110,
			row.label, 9, weight, s.MutedColor, "left", s)); err != nil {
			return nil, err
		}
		if err := add(textbox(row.id+"_value", valueCol.X, y, valueCol.Width,
			row.value, 9, weight, s.TextColor, "right", s)); err != nil {
			return nil, err
		}
		y += TotalsRow
	}

	// --- 页脚带 [FooterStartY, PageHeight-Margin)，高度为页面剩余空间 ---
	fc := FooterStartY
	footerLine := &scene.Line{
		Base:        scene.DefaultBase("footer_line", "页脚分隔线"),
		X2:          tableWidth,
		Stroke:      s.MutedColor,
		StrokeWidth: 0.5,
	}
	footerLine.Left = Margin
	footerLine.Top = fc
	if err := add(footerLine); err != nil {
		return nil, err
	}
	fc += 14

	bank := joinNonEmpty("\n",
		strOrEmpty(s.BankName), strOrEmpty(s.BankAccount), strOrEmpty(s.BankIFSC))
	if s.ShowBank && bank != "" {
		if err := add(textbox("bank_label", Margin, fc, 160,
			"Bank Details", 9, "bold", s.TextColor, "left", s)); err != nil {
			return nil, err
		}
		if err := add(textbox("bank_details", Margin, fc+14, 240,
			binding.Interpolate(bank, data), 9, "normal", s.MutedColor, "left", s)); err != nil {
			return nil, err
		}
		fc += 52
	}

	terms := joinNonEmpty("\n", strOrEmpty(s.TermsLine1), strOrEmpty(s.TermsLine2))
	if s.ShowTerms && terms != "" {
		if err := add(textbox("terms_label", Margin, fc, 160,
			"Terms & Conditions", 9, "bold", s.TextColor, "left", s)); err != nil {
			return nil, err
		}
		if err := add(textbox("terms_text", Margin, fc+14, 300,
			binding.Interpolate(terms, data), 8, "normal", s.MutedColor, "left", s)); err != nil {
			return nil, err
		}
		fc += TermsIncrement
	}

	if s.ShowSignature {
		sigLine := &scene.Line{
			Base:        scene.DefaultBase("signature_line", "签名线"),
			X2:          140,
			Stroke:      s.TextColor,
			StrokeWidth: 0.8,
		}
		sigLine.Left = PageWidth - Margin - 140
		sigLine.Top = PageHeight - Margin - 30
		if err := add(sigLine); err != nil {
			return nil, err
		}
		if err := add(textbox("signature_label", PageWidth-Margin-140, PageHeight-Margin-24, 140,
			"Authorised Signatory", 8, "normal", s.MutedColor, "center", s)); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// textbox 构造一个常用参数的文本块元素。
func textbox(id string, x, y, w float64, content string, size float64, weight, fill, align string, s Settings) *scene.Textbox {
	tb := &scene.Textbox{
		Base:       scene.DefaultBase(id, ""),
		Width:      w,
		Text:       content,
		FontFamily: s.FontFamily,
		FontSize:   size,
		FontWeight: weight,
		Fill:       fill,
		TextAlign:  align,
		LineHeight: 1.25,
	}
	tb.Left = x
	tb.Top = y
	return tb
}

func rowID(colID string, i int) string {
	// 商品名列沿用 row_product_N 的角色名，其余列按列名派生
	if colID == "col_desc" {
		return fmt.Sprintf("row_product_%d", i)
	}
	return fmt.Sprintf("row_%s_%d", strings.TrimPrefix(colID, "col_"), i)
}

func contactLine(c Company) string {
	return joinNonEmpty("  ", c.Phone, c.Email)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }
