// Package publish compares local descriptors with what a remote repository
// has published.
package publish

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -source=checker.go -destination=mock_checker.go -package=publish

import (
	"context"

	"github.com/cloudposse/pomgraph/pkg/pom"
)

// Checker reports whether the published state of a project differs from the
// local descriptor. A project that was never published differs.
type Checker interface {
	Differs(ctx context.Context, p *pom.Project) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, p *pom.Project) (bool, error)

func (f CheckerFunc) Differs(ctx context.Context, p *pom.Project) (bool, error) { return f(ctx, p) }
