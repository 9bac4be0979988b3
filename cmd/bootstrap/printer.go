package bootstrap

import (
	"fmt"
	"os"
	"strings"
)

var defaultBanner = ` ___  _____    ___  _    _ _  _____   _____
/ _ \|_   _|  / _ \| |  | | |/ _ _ \ / ____|
| |_| | | |  | |_| | |  | | | |_| | | (___
|  _  | | |  |  _  | |/\| | |  _  |  \___ \
| | | |_| |_ | | | |  /\  | | | | |  ____) |
|_| |_|_____||_| |_|_/  \_|_|_| |_| |_____/ `

// PrintBanner prints the startup banner, preferring banner.txt when the
// operator dropped a custom one next to the binary
func PrintBanner(filename, serviceName string) error {
	banner := defaultBanner
	if filename != "" {
		if data, err := os.ReadFile(filename); err == nil {
			banner = string(data)
		}
	}

	colors := []string{
		"\x1b[38;5;45m",
		"\x1b[38;5;51m",
		"\x1b[38;5;87m",
		"\x1b[38;5;123m",
		"\x1b[38;5;159m",
		"\x1b[38;5;195m",
	}

	for i, line := range strings.Split(banner, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		color := colors[i%len(colors)]
		fmt.Println(color + line + "\x1b[0m")
	}
	if serviceName != "" {
		fmt.Printf("\x1b[38;5;231m%s\x1b[0m\n\n", serviceName)
	}
	return nil
}
