package binding

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// binding 将模板设置里的自由文本（标题、条款、银行信息等）中的
// ${path.to.value} 占位符替换为公司/单据记录中的值。
// 支持 map、结构体（按 json 标签或字段名，不区分大小写）与切片下标，
// 并允许 ${path|默认值} 形式在路径缺失时落回默认文本。

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 替换 text 中的全部占位符。data 为空或路径不存在且无默认值时，
// 保留原占位符原样输出。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		expr := strings.TrimSpace(groups[1])
		path := expr
		fallback := ""
		hasFallback := false
		if i := strings.Index(expr, "|"); i != -1 {
			path = strings.TrimSpace(expr[:i])
			fallback = strings.TrimSpace(expr[i+1:])
			hasFallback = true
		}
		if path == "" {
			return match
		}
		if val, ok := resolvePath(data, path); ok {
			return fmt.Sprint(val)
		}
		if hasFallback {
			return fallback
		}
		return match
	})
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descend(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendIndex(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

// descend 在 map 或结构体上按键下降一层。
func descend(current any, key string) (any, bool) {
	v := reflect.ValueOf(current)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := v.MapIndex(reflect.ValueOf(key))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			tag := f.Tag.Get("json")
			if c := strings.IndexByte(tag, ','); c != -1 {
				tag = tag[:c]
			}
			if strings.EqualFold(tag, key) || strings.EqualFold(f.Name, key) {
				return v.Field(i).Interface(), true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

func descendIndex(current any, idx int) (any, bool) {
	v := reflect.ValueOf(current)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}
	if idx < 0 || idx >= v.Len() {
		return nil, false
	}
	return v.Index(idx).Interface(), true
}
