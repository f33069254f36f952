// Package entity 定义领域实体
package entity

import (
	"time"
)

// RecentBook 最近阅读条目。列表按 id 去重、最近优先、容量封顶。
type RecentBook struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Progress  float64   `json:"progress"`
	FirstRead time.Time `json:"first_read"`
	LastRead  time.Time `json:"last_read"`
}
