package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/autohof/settlement-bot/internal/domain/obligation"
	"github.com/panjf2000/ants/v2"
)

// UpdateApplier writes update instructions to the obligation store through a
// bounded worker pool. Instructions are independent per-row writes with no
// transaction spanning them; a failed write is reported in its slot and never
// blocks the others, so partial application is possible and accepted.
type UpdateApplier struct {
	store  obligation.Store
	pool   *ants.Pool
	logger *slog.Logger
}

// UpdateResult pairs one instruction with the outcome of applying it.
type UpdateResult struct {
	Instruction obligation.UpdateInstruction
	Err         error
}

// NewUpdateApplier creates an applier with the given pool size.
func NewUpdateApplier(logger *slog.Logger, store obligation.Store, poolSize int) (*UpdateApplier, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	return &UpdateApplier{
		store:  store,
		pool:   pool,
		logger: logger,
	}, nil
}

// Apply writes every instruction and collects all outcomes before returning.
// Result order matches instruction order.
func (a *UpdateApplier) Apply(ctx context.Context, instructions []obligation.UpdateInstruction) []UpdateResult {
	results := make([]UpdateResult, len(instructions))

	var wg sync.WaitGroup
	for i, instruction := range instructions {
		i, instruction := i, instruction
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			results[i] = UpdateResult{
				Instruction: instruction,
				Err:         a.store.ApplyUpdate(ctx, instruction),
			}
		})
		if err != nil {
			wg.Done()
			a.logger.Error("failed to submit update to worker pool",
				"locator", instruction.Locator, "error", err)
			results[i] = UpdateResult{Instruction: instruction, Err: err}
		}
	}
	wg.Wait()

	return results
}

// Running returns the number of workers currently applying updates.
func (a *UpdateApplier) Running() int {
	return a.pool.Running()
}

// Shutdown releases the worker pool.
func (a *UpdateApplier) Shutdown() {
	a.logger.Info("Shutting down update applier", "running_workers", a.pool.Running())
	a.pool.Release()
}
