package store

import (
	"context"

	"github.com/rushteam/meeplekit/core"
)

// CatalogStore 提供一次训练 run 产出的嵌入目录的只读访问。
// 实现必须并发安全；Entries 返回的切片调用方不得修改。
type CatalogStore interface {
	// Entries 返回目录全量条目，行序稳定。
	Entries() []core.CatalogEntry

	// Get 按游戏标识取目录条目。
	Get(id string) (*core.CatalogEntry, bool)

	// Metadata 返回产出该目录的训练 run 元数据。
	Metadata() core.RunMetadata
}

// RunStore 持久化训练 run 产物，并维护 "latest" 指针。
// 一个 run 写入后不可变，只会被更新的 run 取代。
type RunStore interface {
	// SaveRun 原子写入一个 run（目录 + 元数据 + 可选模型），成功后 run 可被 LoadRun 读取。
	// model 为 nil 时不落模型文件。
	SaveRun(ctx context.Context, meta core.RunMetadata, entries []core.CatalogEntry, model any) error

	// SetLatest 原子切换 latest 指针到指定 run。
	SetLatest(ctx context.Context, runID string) error

	// LoadRun 读取指定 run 的目录与元数据。
	LoadRun(ctx context.Context, runID string) (*core.RunMetadata, []core.CatalogEntry, error)

	// LoadLatest 读取 latest 指针指向的 run。
	LoadLatest(ctx context.Context) (*core.RunMetadata, []core.CatalogEntry, error)

	// LoadModel 把指定 run 的模型文件解码进 out；run 未落模型时返回 NOT_FOUND。
	LoadModel(ctx context.Context, runID string, out any) error

	// ListRuns 返回全部 run 标识，按创建时间升序。
	ListRuns(ctx context.Context) ([]string, error)
}
