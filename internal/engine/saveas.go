package engine

import (
	"context"
	"fmt"

	"github.com/tinoosan/bookkeep/internal/errs"
)

// Progress is one save-as progress event. A terminal event carries either
// StageDone or a non-nil Err; the channel closes after it.
type Progress struct {
	Stage string
	Err   error
}

const (
	StageCopy = "copy"
	StageDone = "done"
)

type fileSaver interface {
	SaveInto(ctx context.Context, dst string) error
}

// SaveAs copies the open book into a new file at dst on a worker goroutine.
// The engine lock is not held across the copy; the sqlite backend produces
// a consistent snapshot on its own. Callers drain the returned channel.
func (e *Engine) SaveAs(dst string) (<-chan Progress, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return nil, err
	}
	if dst == "" {
		return nil, fmt.Errorf("%w: empty destination path", errs.ErrInvalid)
	}
	saver, ok := e.store.(fileSaver)
	if !ok {
		return nil, fmt.Errorf("%w: the open book is not file-backed", errs.ErrInvalid)
	}

	progress := make(chan Progress, 2)
	go func() {
		defer close(progress)
		progress <- Progress{Stage: StageCopy}
		if err := saver.SaveInto(context.Background(), dst); err != nil {
			e.log.Error("save-as failed", "dst", dst, "error", err)
			progress <- Progress{Stage: StageCopy, Err: err}
			return
		}
		e.log.Info("book saved", "dst", dst)
		opsTotal.WithLabelValues("save_as").Inc()
		progress <- Progress{Stage: StageDone}
	}()
	return progress, nil
}
