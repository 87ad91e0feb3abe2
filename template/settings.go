package template

// 该文件定义模板设置与公司记录。设置是一个扁平的具名字段集合：
// 颜色（hex 字符串）、字体名、显示开关、标签文本与可空的自由文本内容。
// 核心只读取这里列出的字段，不假定存在其他字段。

// Settings 是文档模板的样式/内容设置记录。
type Settings struct {
	Title       string `json:"title"`        // 单据标题，如 "TAX INVOICE"
	AccentColor string `json:"accent_color"` // 页眉带与表头底色
	TextColor   string `json:"text_color"`
	MutedColor  string `json:"muted_color"` // 次要文本颜色
	FontFamily  string `json:"font_family"`

	ShowLogo        bool `json:"show_logo"`
	ShowGSTINHeader bool `json:"show_gstin_header"`
	ShowBank        bool `json:"show_bank"`
	ShowTerms       bool `json:"show_terms"`
	ShowSignature   bool `json:"show_signature"`

	BillToLabel    string `json:"bill_to_label"`
	InvoiceNoLabel string `json:"invoice_no_label"`
	DateLabel      string `json:"date_label"`

	// 可空内容字段：nil 与空串等价于"无内容"。
	TermsLine1  *string `json:"terms_line1"`
	TermsLine2  *string `json:"terms_line2"`
	BankName    *string `json:"bank_name"`
	BankAccount *string `json:"bank_account"`
	BankIFSC    *string `json:"bank_ifsc"`
}

// Company 是只读的公司记录，核心永不修改它。
type Company struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	GSTIN    string `json:"gstin"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	LogoRef  string `json:"logo"`
}

// DefaultSettings 返回默认模板设置。
func DefaultSettings() Settings {
	return Settings{
		Title:           "TAX INVOICE",
		AccentColor:     "#eef2f9",
		TextColor:       "#1f2937",
		MutedColor:      "#6b7280",
		FontFamily:      "regular",
		ShowLogo:        true,
		ShowGSTINHeader: true,
		ShowBank:        true,
		ShowTerms:       true,
		ShowSignature:   true,
		BillToLabel:     "Bill To",
		InvoiceNoLabel:  "Invoice No.",
		DateLabel:       "Date",
	}
}

// normalize 为空字段回填默认值，不修改入参。
func normalize(s Settings) Settings {
	def := DefaultSettings()
	if s.Title == "" {
		s.Title = def.Title
	}
	if s.AccentColor == "" {
		s.AccentColor = def.AccentColor
	}
	if s.TextColor == "" {
		s.TextColor = def.TextColor
	}
	if s.MutedColor == "" {
		s.MutedColor = def.MutedColor
	}
	if s.FontFamily == "" {
		s.FontFamily = def.FontFamily
	}
	if s.BillToLabel == "" {
		s.BillToLabel = def.BillToLabel
	}
	if s.InvoiceNoLabel == "" {
		s.InvoiceNoLabel = def.InvoiceNoLabel
	}
	if s.DateLabel == "" {
		s.DateLabel = def.DateLabel
	}
	return s
}

// strOrEmpty 读取可空内容字段。
func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
