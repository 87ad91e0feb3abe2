package editor

import (
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/luocy7/gstpress/scene"
)

// ImageLoader 负责把图片引用（文件路径、URL、资源键）解析为位图。
// 加载可能很慢，期间编辑器可以继续接受其他操作。
type ImageLoader interface {
	Load(src string) (image.Image, error)
}

// AddImage 加载图片并插入对应的场景元素。
// 加载失败时画布保持原样不留空壳；加载返回前若画布已被 Clear 或
// LoadGraph 整体替换，则丢弃这次过期的结果，不插入。
func (e *Editor) AddImage(src string) (*scene.Image, error) {
	if e.loader == nil {
		return nil, fmt.Errorf("editor: 未配置图片加载器")
	}
	gen := e.imageGen
	img, err := e.loader.Load(src)
	if err != nil {
		return nil, fmt.Errorf("editor: 加载图片 %q 失败: %w", src, err)
	}
	if gen != e.imageGen {
		// 画布在加载期间已被替换，结果作废
		return nil, nil
	}

	bounds := img.Bounds()
	el := &scene.Image{
		Base:   scene.DefaultBase(uuid.NewString(), "image"),
		Width:  float64(bounds.Dx()),
		Height: float64(bounds.Dy()),
		Src:    src,
	}
	el.Left = 100
	el.Top = 100
	if err := e.appendElement(el); err != nil {
		return nil, err
	}
	return el, nil
}
