package layout

import (
	"fmt"
	"testing"

	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/tax"
	"github.com/luocy7/gstpress/template"
)

func testCompany() template.Company {
	return template.Company{
		Name:     "Acme Traders",
		Address1: "1 Industrial Estate",
		GSTIN:    "27AAAAA0000A1Z5",
	}
}

func testInvoice(items int) *Invoice {
	inv := &Invoice{
		Number: "INV-0042",
		Date:   "01/04/2026",
		Customer: Customer{
			Name:    "Sample Customer Pvt. Ltd.",
			Address: "12 Market Road, Pune",
		},
	}
	for i := 0; i < items; i++ {
		inv.Items = append(inv.Items, Item{
			Description: fmt.Sprintf("Product %d", i+1),
			Quantity:    1,
			Rate:        118,
			GSTPercent:  18,
		})
	}
	return inv
}

func hasText(p Page, content string) bool {
	for _, tb := range p.Texts {
		if tb.Content == content {
			return true
		}
	}
	return false
}

func TestBuildSinglePage(t *testing.T) {
	res, err := Build(testInvoice(3), testCompany(), template.DefaultSettings(), BuildOptions{})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("3 行商品应排进单页，实际 %d 页", len(res.Pages))
	}
	p := res.Pages[0]
	if p.Width != template.PageWidth || p.Height != template.PageHeight {
		t.Fatalf("页面尺寸 = %gx%g", p.Width, p.Height)
	}
	if !hasText(p, "Page 1 of 1") {
		t.Fatalf("缺少页码")
	}
	if !hasText(p, "Acme Traders") || !hasText(p, "Sample Customer Pvt. Ltd.") {
		t.Fatalf("缺少商家或客户信息")
	}
	if !hasText(p, "Product 1") {
		t.Fatalf("缺少商品行")
	}
}

func TestBuildPaginatesLongTable(t *testing.T) {
	res, err := Build(testInvoice(60), testCompany(), template.DefaultSettings(), BuildOptions{})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	if len(res.Pages) < 2 {
		t.Fatalf("60 行商品应跨页，实际 %d 页", len(res.Pages))
	}
	n := len(res.Pages)
	for i, p := range res.Pages {
		if !hasText(p, fmt.Sprintf("Page %d of %d", i+1, n)) {
			t.Fatalf("第 %d 页缺少准确页码", i+1)
		}
	}
	// 换页后表头重绘：后续页也应有列标题
	if !hasText(res.Pages[1], "Item") {
		t.Fatalf("续页缺少表头")
	}
	// 合计区只出现在最后一页
	last := res.Pages[n-1]
	if !hasText(last, "Grand Total") {
		t.Fatalf("最后一页缺少合计区")
	}
	for _, p := range res.Pages[:n-1] {
		if hasText(p, "Grand Total") {
			t.Fatalf("合计区不应出现在中间页")
		}
	}
}

func TestBuildTotalsReconcile(t *testing.T) {
	inv := testInvoice(2)
	inv.DiscountPercent = 10
	res, err := Build(inv, testCompany(), template.DefaultSettings(), BuildOptions{})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}

	sum := tax.Totals(inv.lines(), inv.DiscountPercent)
	last := res.Pages[len(res.Pages)-1]
	for _, want := range []string{
		fmt.Sprintf("%.2f", sum.BaseTotal),
		fmt.Sprintf("%.2f", sum.TaxTotal),
		fmt.Sprintf("%.2f", sum.Subtotal),
		fmt.Sprintf("%.2f", -sum.DiscountAmount),
		fmt.Sprintf("%.2f", sum.GrandTotal),
	} {
		if !hasText(last, want) {
			t.Fatalf("合计区缺少金额 %s", want)
		}
	}
	// 每行金额与计算器口径一致
	base, _ := tax.Decompose(118, 18)
	if !hasText(res.Pages[0], fmt.Sprintf("%.2f", base)) {
		t.Fatalf("行内底价应经同一分解推导")
	}
}

func TestBuildValidatesInput(t *testing.T) {
	if _, err := Build(nil, testCompany(), template.DefaultSettings(), BuildOptions{}); err == nil {
		t.Fatalf("空发票应被拒绝")
	}
	inv := testInvoice(1)
	inv.Items[0].GSTPercent = 120
	if _, err := Build(inv, testCompany(), template.DefaultSettings(), BuildOptions{}); err == nil {
		t.Fatalf("越界 GST 应被拒绝")
	}
	inv = testInvoice(1)
	inv.DiscountPercent = -5
	if _, err := Build(inv, testCompany(), template.DefaultSettings(), BuildOptions{}); err == nil {
		t.Fatalf("负折扣应被拒绝")
	}
	inv = testInvoice(1)
	inv.Customer.Name = ""
	if _, err := Build(inv, testCompany(), template.DefaultSettings(), BuildOptions{}); err == nil {
		t.Fatalf("缺少客户应被拒绝")
	}
}

func TestBuildBackgroundIsCosmeticOnly(t *testing.T) {
	g := scene.New("#ffffff")
	deco := &scene.Rect{Base: scene.DefaultBase("deco", "水印框"), Width: 100, Height: 50, Fill: "#fde68a"}
	deco.Left, deco.Top = 400, 700
	if err := g.Append(deco); err != nil {
		t.Fatalf("构造背景失败: %v", err)
	}
	// 背景里的文字金额不参与计算
	fake := &scene.Textbox{Base: scene.DefaultBase("fake_total", "伪合计"), Width: 100,
		Text: "999999.00", FontSize: 9}
	if err := g.Append(fake); err != nil {
		t.Fatalf("构造背景失败: %v", err)
	}

	inv := testInvoice(1)
	res, err := Build(inv, testCompany(), template.DefaultSettings(), BuildOptions{Background: g})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	p := res.Pages[0]
	found := false
	for _, rc := range p.Rects {
		if rc.X == 400 && rc.Y == 700 {
			found = true
		}
	}
	if !found {
		t.Fatalf("背景矩形应绘制在首页")
	}
	if hasText(p, "999999.00") {
		t.Fatalf("背景文字不应进入打印结果")
	}
	sum := tax.Totals(inv.lines(), 0)
	if !hasText(p, fmt.Sprintf("%.2f", sum.GrandTotal)) {
		t.Fatalf("合计必须来自发票数据重新推导")
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res, err := Build(testInvoice(1), testCompany(), template.DefaultSettings(), BuildOptions{})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	path := t.TempDir() + "/layout.json"
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写调试 JSON 失败: %v", err)
	}
}

func TestMoneyAndTrimFloat(t *testing.T) {
	if money(3.5) != "3.50" {
		t.Fatalf("money(3.5) = %s", money(3.5))
	}
	if trimFloat(2) != "2" || trimFloat(2.5) != "2.5" {
		t.Fatalf("trimFloat 输出不对")
	}
	if got := parseColor("#2563eb", Color{}); got != (Color{R: 37, G: 99, B: 235}) {
		t.Fatalf("parseColor = %+v", got)
	}
	if got := parseColor("oops", Color{R: 1, G: 2, B: 3}); got != (Color{R: 1, G: 2, B: 3}) {
		t.Fatalf("非法颜色应落回默认值: %+v", got)
	}
}
