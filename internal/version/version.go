package version

import "fmt"

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/checkout/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// Version возвращает только номер версии (для health check).
func Version() string { return version }

func String() string {
	return fmt.Sprintf("checkout-demo version=%s commit=%s date=%s", version, commit, date)
}
