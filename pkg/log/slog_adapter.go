package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes mesh events to an slog.Logger.
// Useful for development when you want to see events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
// Policy fallbacks are logged at Warn level so they surface with default
// handler settings.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}
	if event.MeshID != "" {
		attrs = append(attrs, slog.String("mesh_id", event.MeshID))
	}

	level := slog.LevelDebug

	// Add type-specific attributes
	switch {
	case event.Policy != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("op", event.Policy.Op.String()),
			slog.String("policy", event.Policy.Policy),
		)
		if event.Policy.Kind != "" {
			attrs = append(attrs, slog.String("kind", event.Policy.Kind))
		}
		if event.Policy.Element != "" {
			attrs = append(attrs, slog.String("element", event.Policy.Element))
		}
		if event.Policy.Usage != "" {
			attrs = append(attrs, slog.String("usage", event.Policy.Usage))
		}
		attrs = append(attrs, slog.Int("elements", event.Policy.Elements))
	case event.Registry != nil:
		attrs = append(attrs,
			slog.String("op", event.Registry.Op.String()),
			slog.String("name", event.Registry.Name),
			slog.Uint64("id", uint64(event.Registry.ID)),
		)
		if event.Registry.NewName != "" {
			attrs = append(attrs, slog.String("new_name", event.Registry.NewName))
		}
		if event.Registry.Element != "" {
			attrs = append(attrs, slog.String("element", event.Registry.Element))
		}
		if event.Registry.Kind != "" {
			attrs = append(attrs, slog.String("kind", event.Registry.Kind))
		}
	case event.Scan != nil:
		attrs = append(attrs,
			slog.String("mode", event.Scan.Mode.String()),
			slog.String("access", event.Scan.Access.String()),
			slog.Uint64("mask", uint64(event.Scan.Mask)),
			slog.Int("visited", event.Scan.Visited),
			slog.Duration("duration", event.Scan.Duration),
		)
	case event.Error != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Op != "" {
			attrs = append(attrs, slog.String("op", event.Error.Op))
		}
		if event.Error.Attribute != "" {
			attrs = append(attrs, slog.String("attribute", event.Error.Attribute))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "mesh", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
