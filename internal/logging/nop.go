package logging

import "context"

// Nop is a Logger that discards everything.
type Nop struct{}

func NewNop() *Nop { return &Nop{} }

func (n *Nop) Debug(ctx context.Context, msg string, args ...any) {}
func (n *Nop) Info(ctx context.Context, msg string, args ...any)  {}
func (n *Nop) Warn(ctx context.Context, msg string, args ...any)  {}
func (n *Nop) Error(ctx context.Context, msg string, args ...any) {}
func (n *Nop) With(args ...any) Logger                            { return n }
