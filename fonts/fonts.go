package fonts

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Load 返回内置字体槽位的 TTF 字节数据。
// 布局结果中的 Font 字段写的就是这里的槽位名：regular 或 bold。
func Load(name string) ([]byte, error) {
	switch name {
	case "", "regular", "normal":
		return goregular.TTF, nil
	case "bold":
		return gobold.TTF, nil
	default:
		return nil, fmt.Errorf("fonts: 未知的内置字体槽位 %q", name)
	}
}
