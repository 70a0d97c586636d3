package service

import (
	"context"
	"sync"

	"github.com/pashumitra/internal/constants"

	"golang.org/x/sync/errgroup"
)

// BulkItemResult 批量操作的单项结果
type BulkItemResult struct {
	ID      uint   `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult 批量操作结果, 部分失败不影响其余项
type BulkResult struct {
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Results   []BulkItemResult `json:"results"`
}

// runBulk 以有限并发执行批量操作, 每一项独立提交、独立失败。
// 结果顺序与输入顺序一致。
func runBulk(ctx context.Context, ids []uint, concurrency int, fn func(id uint) error) BulkResult {
	result := BulkResult{
		Total:   len(ids),
		Results: make([]BulkItemResult, len(ids)),
	}
	if len(ids) == 0 {
		return result
	}
	if concurrency <= 0 {
		concurrency = constants.BulkDefaultConcurrency
	}

	var mu sync.Mutex
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			item := BulkItemResult{ID: id, Success: true}
			if err := fn(id); err != nil {
				item.Success = false
				item.Error = err.Error()
			}
			mu.Lock()
			result.Results[i] = item
			if item.Success {
				result.Succeeded++
			} else {
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return result
}
