package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rushteam/meeplekit/core"
)

const (
	metadataFile = "metadata.json"
	catalogFile  = "catalog.json"
	modelFile    = "model.json"
	latestFile   = "LATEST"
	stagingDir   = ".staging"
)

// FilesystemRunStore 把训练 run 落到本地目录：
//
//	<root>/<run_id>/metadata.json
//	<root>/<run_id>/catalog.json
//	<root>/<run_id>/model.json   （可选）
//	<root>/LATEST                （内容是 run_id）
//
// 写入先落到暂存目录再 rename，读方任何时刻看到的 run 都是完整的。
type FilesystemRunStore struct {
	root string
}

// NewFilesystemRunStore 创建（必要时建出根目录）文件系统 run 存储。
func NewFilesystemRunStore(root string) (*FilesystemRunStore, error) {
	if root == "" {
		return nil, core.NewConfigError(core.ModuleStore, "run store root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create run store root: %w", err)
	}
	return &FilesystemRunStore{root: root}, nil
}

func (s *FilesystemRunStore) SaveRun(ctx context.Context, meta core.RunMetadata, entries []core.CatalogEntry, model any) error {
	if meta.RunID == "" {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "run id is required")
	}
	if strings.ContainsAny(meta.RunID, `/\`) {
		return core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "run id must not contain path separators")
	}

	staging := filepath.Join(s.root, stagingDir, meta.RunID)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(filepath.Join(s.root, stagingDir))

	if err := writeJSON(filepath.Join(staging, metadataFile), meta); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, catalogFile), entries); err != nil {
		return err
	}
	if model != nil {
		if err := writeJSON(filepath.Join(staging, modelFile), model); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	final := filepath.Join(s.root, meta.RunID)
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("publish run %s: %w", meta.RunID, err)
	}
	return nil
}

func (s *FilesystemRunStore) SetLatest(ctx context.Context, runID string) error {
	if _, err := os.Stat(filepath.Join(s.root, runID, metadataFile)); err != nil {
		return core.NewNotFoundError(core.ModuleStore, "run does not exist", []string{runID})
	}
	// 先写临时文件再 rename，指针切换原子
	tmp := filepath.Join(s.root, latestFile+".tmp")
	if err := os.WriteFile(tmp, []byte(runID), 0o644); err != nil {
		return fmt.Errorf("write latest pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.root, latestFile)); err != nil {
		return fmt.Errorf("swap latest pointer: %w", err)
	}
	return nil
}

func (s *FilesystemRunStore) LoadRun(ctx context.Context, runID string) (*core.RunMetadata, []core.CatalogEntry, error) {
	dir := filepath.Join(s.root, runID)
	var meta core.RunMetadata
	if err := readJSON(filepath.Join(dir, metadataFile), &meta); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, core.NewNotFoundError(core.ModuleStore, "run does not exist", []string{runID})
		}
		return nil, nil, err
	}
	var entries []core.CatalogEntry
	if err := readJSON(filepath.Join(dir, catalogFile), &entries); err != nil {
		return nil, nil, err
	}
	return &meta, entries, nil
}

func (s *FilesystemRunStore) LoadLatest(ctx context.Context) (*core.RunMetadata, []core.CatalogEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.root, latestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, core.NewNotFoundError(core.ModuleStore, "no run has been published yet", nil)
		}
		return nil, nil, err
	}
	runID := strings.TrimSpace(string(data))
	return s.LoadRun(ctx, runID)
}

func (s *FilesystemRunStore) LoadModel(ctx context.Context, runID string, out any) error {
	if err := readJSON(filepath.Join(s.root, runID, modelFile), out); err != nil {
		if os.IsNotExist(err) {
			return core.NewNotFoundError(core.ModuleStore, "run has no model artifact", []string{runID})
		}
		return err
	}
	return nil
}

func (s *FilesystemRunStore) ListRuns(ctx context.Context) ([]string, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, err
	}
	type runInfo struct {
		id      string
		created int64
	}
	runs := make([]runInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.IsDir() || de.Name() == stagingDir {
			continue
		}
		var meta core.RunMetadata
		if err := readJSON(filepath.Join(s.root, de.Name(), metadataFile), &meta); err != nil {
			continue
		}
		runs = append(runs, runInfo{id: de.Name(), created: meta.CreatedAt.UnixNano()})
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].created != runs[j].created {
			return runs[i].created < runs[j].created
		}
		return runs[i].id < runs[j].id
	})
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.id
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}
