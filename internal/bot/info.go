package bot

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// HelpText lists the commands.
func HelpText(version string) string {
	return fmt.Sprintf(`tomorin %s

,cmd  .cmd  ，cmd  。cmd   run a shell command
r#code                   evaluate Rust on the playground
+                        repeat the replied-to message
h#                       show this help
s#                       show status

Edit a command to run it again.`, version)
}

// Status describes the running process.
func (b *Bot) Status() string {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	var sb strings.Builder
	fmt.Fprintf(&sb, "tomorin %s\n", b.Version)
	fmt.Fprintf(&sb, "uptime:     %s\n", time.Since(b.Started).Round(time.Second))
	fmt.Fprintf(&sb, "heap:       %s\n", mebibytes(ms.HeapAlloc))
	fmt.Fprintf(&sb, "sys:        %s\n", mebibytes(ms.Sys))
	fmt.Fprintf(&sb, "goroutines: %d\n", runtime.NumGoroutine())
	fmt.Fprintf(&sb, "os:         %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&sb, "go:         %s", runtime.Version())
	return sb.String()
}

func mebibytes(n uint64) string {
	return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
}
