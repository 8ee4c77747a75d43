package cmd

import (
	"errors"
	"fmt"
	"os"

	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/corey/kwscan/internal/adapters/socket"
)

// storeBusy reports whether opening the dictionary store gave up waiting for
// its file lock.
func storeBusy(err error) bool {
	return errors.Is(err, bolterrors.ErrTimeout)
}

// storeBusyHint explains a busy store. The daemon only holds the lock while
// it reloads, so a running daemon means retrying or scanning through it.
func storeBusyHint(root string) string {
	sockPath := socket.SocketPath(root)

	if socket.NewClient(sockPath).Ping() {
		return "dictionary store is busy: the kwscan daemon is reloading it\n" +
			"  scan through the daemon instead:  kwscan scan --daemon\n" +
			"  or retry once the reload finishes"
	}

	msg := "dictionary store is busy: another kwscan process holds it\n" +
		"  find it:  pgrep -fl kwscan\n" +
		"  then retry, or start a daemon and use:  kwscan scan --daemon"
	if _, err := os.Stat(sockPath); err == nil {
		msg += fmt.Sprintf("\n  %s is left over from a daemon that is not answering; remove it once that process is gone", sockPath)
	}
	return msg
}
