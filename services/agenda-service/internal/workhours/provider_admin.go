//go:build !protogen

package workhours

import (
	"log/slog"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/storage"
)

// NewAdminProvider falls back to the local store when the generated admin
// client is not compiled in.
func NewAdminProvider(_ *slog.Logger, repo *storage.WorkHoursRepository, _ string) (Provider, error) {
	return NewStoreProvider(repo), nil
}
