// Package session 实现阅读会话编排核心：章节推导、位置持久化、书签管理与会话状态机
package session

import (
	"strconv"

	"z-reader-session-api/internal/domain/entity"
	"z-reader-session-api/pkg/errors"
)

// DefaultChapterKey 片段既无 chapter_id 也无 volume_id 时的兜底章节键
const DefaultChapterKey = "default_chapter"

// ChapterKeyOf 计算片段的章节键，优先级 chapter_id > volume_id > 兜底键
func ChapterKeyOf(h *entity.Heading) string {
	if h.ChapterID != "" {
		return h.ChapterID
	}
	if h.VolumeID != "" {
		return h.VolumeID
	}
	return DefaultChapterKey
}

// ChapterMap 章节模型：按片段顺序首次出现的章节键序列即规范章节序，
// 章节 N 的位置由其第一个片段出现的顺序决定，与任何显式章节序号无关。
type ChapterMap struct {
	Keys       []string
	Grouped    map[string][]*entity.Heading
	indexByKey map[string]int
}

// DeriveChapters 从有序片段列表推导章节模型。
// 单次线性遍历，确定性输出；空列表得到零章节，由编排器上升为
// "no content structure found" 终态，而不是异常。
func DeriveChapters(headings []*entity.Heading) *ChapterMap {
	m := &ChapterMap{
		Grouped:    make(map[string][]*entity.Heading),
		indexByKey: make(map[string]int),
	}
	for _, h := range headings {
		key := ChapterKeyOf(h)
		if _, seen := m.indexByKey[key]; !seen {
			m.indexByKey[key] = len(m.Keys)
			m.Keys = append(m.Keys, key)
		}
		m.Grouped[key] = append(m.Grouped[key], h)
	}
	return m
}

// Count 章节数量
func (m *ChapterMap) Count() int {
	return len(m.Keys)
}

// KeyAt 返回下标处的章节键
func (m *ChapterMap) KeyAt(idx int) string {
	if idx < 0 || idx >= len(m.Keys) {
		return ""
	}
	return m.Keys[idx]
}

// HeadingsAt 返回下标处章节的片段列表
func (m *ChapterMap) HeadingsAt(idx int) []*entity.Heading {
	key := m.KeyAt(idx)
	if key == "" {
		return nil
	}
	return m.Grouped[key]
}

// TitleAt 返回下标处章节的标题（取该章节第一个带标题的片段）
func (m *ChapterMap) TitleAt(idx int) string {
	for _, h := range m.HeadingsAt(idx) {
		if h.Title != "" {
			return h.Title
		}
	}
	return ""
}

// ResolveIndex 解析外部导航引用（深链等）为章节下标。
// 顺序：精确匹配章节键；按整数解析并先按 0 基下标、再按 1 基序号匹配；
// 均失败返回 ErrChapterNotFound。
func (m *ChapterMap) ResolveIndex(ref string) (int, error) {
	if idx, ok := m.indexByKey[ref]; ok {
		return idx, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, errors.ErrChapterNotFound.WithDetail("unknown chapter reference: " + ref)
	}
	if n >= 0 && n < len(m.Keys) {
		return n, nil
	}
	if n-1 >= 0 && n-1 < len(m.Keys) {
		return n - 1, nil
	}
	return 0, errors.ErrChapterNotFound.WithDetail("chapter numeral out of range: " + ref)
}

// Clamp 将章节下标钳制到 [0, Count-1]；空章节表返回 0
func (m *ChapterMap) Clamp(idx int) int {
	if len(m.Keys) == 0 {
		return 0
	}
	if idx < 0 {
		return 0
	}
	if idx >= len(m.Keys) {
		return len(m.Keys) - 1
	}
	return idx
}
