package shared

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

var (
	getRuntime = func() string { return runtime.GOOS }
	startCmd   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// BrowserCommand builds the command that opens rawURL, honoring $BROWSER when set.
// Only http and https URLs with a host are accepted.
func BrowserCommand(rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: cannot open %q in a browser", ErrInvalidArgument, rawURL)
	}

	if browser := os.Getenv("BROWSER"); browser != "" {
		return exec.Command(browser, rawURL), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}

// OpenBrowser opens the default system browser to the specified URL.
func OpenBrowser(rawURL string) error {
	cmd, err := BrowserCommand(rawURL)
	if err != nil {
		return err
	}

	if err := startCmd(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
