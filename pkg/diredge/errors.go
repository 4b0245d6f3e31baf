package diredge

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMesh reports a surface that is not a closed, consistently
	// oriented 2-manifold triangulation. The more specific errors below wrap it.
	ErrInvalidMesh = errors.New("invalid mesh")

	// ErrBoundaryEdge reports a directed edge with no opposite edge.
	ErrBoundaryEdge = fmt.Errorf("%w: boundary edge", ErrInvalidMesh)

	// ErrNonManifoldEdge reports a directed edge used by more than one face,
	// which means either three or more faces meet at the edge or two
	// neighbours disagree on orientation.
	ErrNonManifoldEdge = fmt.Errorf("%w: non-manifold edge", ErrInvalidMesh)

	// ErrNonManifoldVertex reports a vertex whose faces form more than one fan.
	ErrNonManifoldVertex = fmt.Errorf("%w: non-manifold vertex", ErrInvalidMesh)

	// ErrDegenerateValence reports a one-ring walk that did not return to its
	// start within the step bound.
	ErrDegenerateValence = errors.New("degenerate valence")
)
