package health

import (
	"context"
	"fmt"
)

// Snapshotter reports whether a dataset snapshot is loaded.
type Snapshotter interface {
	Ready() bool
	LastError() error
}

// DatasetChecker fails until the first dataset snapshot is loaded.
type DatasetChecker struct {
	store Snapshotter
}

// NewDatasetChecker creates a new dataset health checker.
func NewDatasetChecker(s Snapshotter) *DatasetChecker {
	return &DatasetChecker{store: s}
}

// Name returns the checker name.
func (c *DatasetChecker) Name() string {
	return "dataset"
}

// Check verifies a snapshot is available.
func (c *DatasetChecker) Check(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("dataset store not configured")
	}
	if c.store.Ready() {
		return nil
	}
	if err := c.store.LastError(); err != nil {
		return fmt.Errorf("dataset not loaded: %w", err)
	}
	return fmt.Errorf("dataset not loaded")
}

// FuncChecker adapts a function to the Checker interface.
type FuncChecker struct {
	name  string
	check func(ctx context.Context) error
}

// NewFuncChecker creates a checker named name that calls check.
func NewFuncChecker(name string, check func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, check: check}
}

// Name returns the checker name.
func (c *FuncChecker) Name() string {
	return c.name
}

// Check runs the wrapped function.
func (c *FuncChecker) Check(ctx context.Context) error {
	if c.check == nil {
		return nil
	}
	return c.check(ctx)
}
