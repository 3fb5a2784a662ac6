// Package logging assembles the structured slog loggers used across the
// chelsa CLI.
//
// It owns level/format parsing, optional log-file teeing, attribute helpers,
// and a progress sampler that keeps transfer progress logs readable under
// concurrent downloads. It also provides a no-op logger for tests and wiring
// code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
