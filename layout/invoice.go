package layout

import (
	"fmt"

	"github.com/luocy7/gstpress/tax"
)

// 票据数据记录。金额字段存储的是含税单价，底价与税额永不落盘，
// 渲染时统一经 tax.Decompose 重新推导。

// Item 是发票上的一行商品。
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`        // 含税单价
	GSTPercent  float64 `json:"gst_percent"` // [0, 100)
}

// line 转换为税额计算用的行记录。
func (it Item) line() tax.LineItem {
	return tax.LineItem{Quantity: it.Quantity, Rate: it.Rate, GSTPercent: it.GSTPercent}
}

// Customer 是收票方信息。
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
	Phone   string `json:"phone"`
}

// Invoice 是静态排版的输入数据。
type Invoice struct {
	Number          string   `json:"number"`
	Date            string   `json:"date"`
	Customer        Customer `json:"customer"`
	Items           []Item   `json:"items"`
	DiscountPercent float64  `json:"discount_percent"`
	Notes           string   `json:"notes"`
}

// Validate 检查发票数据是否可排版。
func (inv *Invoice) Validate() error {
	if inv == nil {
		return fmt.Errorf("layout: 发票为空")
	}
	if inv.Number == "" {
		return fmt.Errorf("layout: 发票缺少编号")
	}
	if inv.Customer.Name == "" {
		return fmt.Errorf("layout: 发票缺少客户名称")
	}
	if err := tax.ValidateDiscountPercent(inv.DiscountPercent); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	for i, it := range inv.Items {
		if it.Description == "" {
			return fmt.Errorf("layout: 第 %d 行缺少商品描述", i+1)
		}
		if err := tax.ValidateLine(it.line()); err != nil {
			return fmt.Errorf("layout: 第 %d 行: %w", i+1, err)
		}
	}
	return nil
}

// lines 返回全部行的税额计算视图。
func (inv *Invoice) lines() []tax.LineItem {
	out := make([]tax.LineItem, len(inv.Items))
	for i, it := range inv.Items {
		out[i] = it.line()
	}
	return out
}
