package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.KeyValueStore 接口。
//
// 示例：
//   var s core.Store = NewMemoryStore()
//   var kv core.KeyValueStore = NewMemoryStore()

import "github.com/rushteam/movierec/core"

// ErrNotFound 是包内对 core.ErrStoreNotFound 的别名，方便实现内部引用。
var ErrNotFound = core.ErrStoreNotFound
