package service

import "errors"

var (
	// ErrViewNotRendered is returned when a view was skipped or not requested.
	ErrViewNotRendered = errors.New("view not rendered")
	// ErrNoViews is returned when Generate is called without any view.
	ErrNoViews = errors.New("no views requested")
)
