package store

import (
	"sync/atomic"

	"github.com/rushteam/meeplekit/core"
)

// MemoryCatalog 是加载进内存的不可变目录，带标识索引。
// 加载后只读，查询路径上无锁。
type MemoryCatalog struct {
	entries []core.CatalogEntry
	index   map[string]int
	meta    core.RunMetadata
}

// NewMemoryCatalog 由条目与元数据构建内存目录。
func NewMemoryCatalog(meta core.RunMetadata, entries []core.CatalogEntry) *MemoryCatalog {
	index := make(map[string]int, len(entries))
	for i := range entries {
		index[entries[i].Game.ID] = i
	}
	return &MemoryCatalog{entries: entries, index: index, meta: meta}
}

func (c *MemoryCatalog) Entries() []core.CatalogEntry { return c.entries }

func (c *MemoryCatalog) Get(id string) (*core.CatalogEntry, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.entries[i], true
}

func (c *MemoryCatalog) Metadata() core.RunMetadata { return c.meta }

// Handle 持有当前生效的目录，支持运行中原子热切换到新 run。
// 读远多于写：读方拿到的是某个完整 run 的快照，切换对查询透明。
type Handle struct {
	current atomic.Pointer[MemoryCatalog]
}

// NewHandle 创建目录句柄；catalog 可为 nil（尚未加载）。
func NewHandle(catalog *MemoryCatalog) *Handle {
	h := &Handle{}
	if catalog != nil {
		h.current.Store(catalog)
	}
	return h
}

// Catalog 返回当前生效的目录；尚未加载返回 nil。
func (h *Handle) Catalog() *MemoryCatalog {
	return h.current.Load()
}

// Swap 原子切换到新目录。
func (h *Handle) Swap(catalog *MemoryCatalog) {
	h.current.Store(catalog)
}

// Entries 实现 recall.CatalogSource，透传当前目录。
func (h *Handle) Entries() []core.CatalogEntry {
	c := h.current.Load()
	if c == nil {
		return nil
	}
	return c.Entries()
}
