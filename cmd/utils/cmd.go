// Package utils holds small helpers shared by the gxnode command: a
// sane-defaults cli.App constructor, the standard CLI flags, and the
// signal-based graceful-shutdown wrapper around a running node (adapted
// from the teacher's cmd/utils package).
package utils

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ground-x/gxchain/log"
	"github.com/ground-x/gxchain/node"
)

var logger = log.NewModuleLogger("cmd/utils")

// Fatalf formats a message to standard error and exits the program.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// StartNode subscribes n to its gossip topics and starts a goroutine that
// stops it cleanly on SIGINT/SIGTERM.
func StartNode(n *node.Node) {
	if err := n.Start(); err != nil {
		Fatalf("Error starting gossip subscriptions: %v", err)
	}
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		logger.Info("Got interrupt, shutting down...")
		go n.Stop()
		for i := 10; i > 0; i-- {
			<-sigc
			if i > 1 {
				logger.Warn("Already shutting down, interrupt more to panic.", "times", i-1)
			}
		}
		panic("received repeated interrupts during shutdown")
	}()
}
