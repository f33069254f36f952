// Package repository 定义数据访问层接口
package repository

import (
	"context"
)

// KeyValueStore 持久化键值存储接口。
// 阅读位置与最近阅读列表以 JSON 字符串的形式存放在这里。
// GetString 在键不存在时返回 ("", false, nil)。
type KeyValueStore interface {
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
