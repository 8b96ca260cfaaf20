// Command spellingbee plays the daily seven-letter word puzzle in the
// terminal and keeps the local puzzle table up to date.
//
//	spellingbee            play today's puzzle
//	spellingbee YYYYMMDD   play the puzzle for that date
//	spellingbee update     fetch the days missing from the table
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		// Restore default handling so a second Ctrl-C kills the process.
		<-ctx.Done()
		cancel()
	}()
	err := NewRootCommand(newApp(os.Stdin, os.Stdout, os.Stderr)).ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(GetExitCode(err))
	}
}
