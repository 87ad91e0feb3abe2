package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/luocy7/gstpress/layout"
	"github.com/luocy7/gstpress/renderer"
	canvasrenderer "github.com/luocy7/gstpress/renderer/canvas"
	"github.com/luocy7/gstpress/scene"
	"github.com/luocy7/gstpress/template"
)

func main() {
	settingsPath := flag.String("settings", "", "模板设置 JSON 路径（缺省使用默认设置）")
	companyPath := flag.String("company", "", "商家信息 JSON 路径")
	invoicePath := flag.String("invoice", "", "发票数据 JSON 路径")
	output := flag.String("out", "output/invoice.pdf", "PDF 输出路径")
	templateOut := flag.String("template", "", "只编译模板场景图 JSON 并写到该路径，不渲染 PDF")
	backgroundPath := flag.String("background", "", "编辑器导出的场景图 JSON，作为首页装饰背景")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	flag.Parse()

	var r renderer.Renderer = canvasrenderer.NewRenderer(filepath.Dir(*output))
	if err := run(*settingsPath, *companyPath, *invoicePath, *output, *templateOut, *backgroundPath, *debug, r); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	if *templateOut != "" {
		fmt.Printf("已生成模板：%s\n", *templateOut)
	} else {
		fmt.Printf("已生成 PDF：%s\n", *output)
	}
}

// run 串联数据加载、模板编译或布局与渲染。
func run(settingsPath, companyPath, invoicePath, outputPath, templateOut, backgroundPath, debugPath string, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}

	settings := template.DefaultSettings()
	if settingsPath != "" {
		if err := loadJSON(settingsPath, &settings); err != nil {
			return fmt.Errorf("读取模板设置失败: %w", err)
		}
	}
	var company template.Company
	if companyPath != "" {
		if err := loadJSON(companyPath, &company); err != nil {
			return fmt.Errorf("读取商家信息失败: %w", err)
		}
	}

	if templateOut != "" {
		g, err := template.Compile(settings, company)
		if err != nil {
			return fmt.Errorf("编译模板失败: %w", err)
		}
		data, err := scene.Marshal(g, scene.ProfileSave)
		if err != nil {
			return fmt.Errorf("序列化模板失败: %w", err)
		}
		return writeFile(templateOut, data)
	}

	if invoicePath == "" {
		return fmt.Errorf("缺少 -invoice 参数")
	}
	var inv layout.Invoice
	if err := loadJSON(invoicePath, &inv); err != nil {
		return fmt.Errorf("读取发票数据失败: %w", err)
	}

	var opts layout.BuildOptions
	if backgroundPath != "" {
		data, err := os.ReadFile(backgroundPath)
		if err != nil {
			return fmt.Errorf("读取背景场景图失败: %w", err)
		}
		g, err := scene.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("解析背景场景图失败: %w", err)
		}
		opts.Background = g
	}

	result, err := layout.Build(&inv, company, settings, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return writeFile(outputPath, pdfBytes)
}

func loadJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if dir := filepath.Dir(debugPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
