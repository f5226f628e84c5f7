package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PoorRican/BidBeast/internal/messenger"
	"github.com/PoorRican/BidBeast/internal/review"
	"github.com/PoorRican/BidBeast/internal/store"
	"github.com/PoorRican/BidBeast/internal/tui"
)

var plainReview bool

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review pending postings interactively (TUI)",
	Long:  "Walks through each unreviewed posting: confirm or override the generated judgment, then refine its pros and cons.",
	RunE:  runReview,
}

func init() {
	reviewCmd.Flags().BoolVar(&plainReview, "plain", false, "line-based conversation on stdin/stdout instead of the TUI")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go nowhere unless --debug.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if debug {
		logger = setupLogger(true)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := review.NewQueue(sqlStore)

	if plainReview {
		out := messenger.NewWriterMessenger(os.Stdout)
		session := review.NewSession(queue, sqlStore, out, logger)
		return runPlainReview(ctx, session)
	}

	out := tui.NewTranscript()
	session := review.NewSession(queue, sqlStore, out, logger)
	return tui.Run(ctx, session, out)
}

// runPlainReview drives the session over stdin for terminals where the
// alt-screen TUI is unwanted (ssh sessions, scripts, narrow terminals).
func runPlainReview(ctx context.Context, session *review.Session) error {
	session.Begin(ctx)
	if session.State() == review.StateIdle {
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		text, ok := readReply(scanner, session.State())
		if !ok || ctx.Err() != nil {
			break
		}
		if text == "exit" {
			session.Exit(ctx)
			return nil
		}
		session.HandleInput(ctx, text)
		if session.State() == review.StateIdle {
			return nil
		}
	}
	session.Exit(ctx)
	return scanner.Err()
}

// readReply reads one operator reply. Pros/cons replies span multiple lines,
// terminated by a blank line; everything else is a single line.
func readReply(scanner *bufio.Scanner, state review.State) (string, bool) {
	if state != review.StateAwaitingPros && state != review.StateAwaitingCons {
		if !scanner.Scan() {
			return "", false
		}
		return scanner.Text(), true
	}

	read := false
	var lines []string
	for scanner.Scan() {
		read = true
		line := scanner.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	if !read {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}
