// Command iclickerpoll runs a live audience-response poll against an
// iClicker base station attached over USB.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openpoll/iclickerpoll/base"
	"github.com/openpoll/iclickerpoll/base/hal/hidapi"
	"github.com/openpoll/iclickerpoll/pkg"
	"github.com/openpoll/iclickerpoll/poll"
	"github.com/openpoll/iclickerpoll/protocol"
)

func main() {
	root := newRootCmd()
	root.AddCommand(newVersionCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// options holds the validated CLI surface. The core packages receive only
// typed values; flag parsing never leaks past this file.
type options struct {
	debug     bool
	jsonLogs  bool
	pollType  string
	duration  time.Duration
	dest      string
	frequency string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "iclickerpoll",
		Short: "Run a live iClicker poll from the command line",
		Long: `iclickerpoll drives an iClicker audience-response base station over USB.

It starts a poll, tallies clicker votes live on the base station's
two-line display, and can save the final results to a CSV file.
Stop the poll with Ctrl+C or with --duration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false,
		"Log USB transactions and decoded packets")
	cmd.Flags().BoolVar(&opts.jsonLogs, "json", false,
		"Output logs as JSON")
	cmd.Flags().StringVar(&opts.pollType, "type", "alpha",
		"Poll type: alpha, numeric, or alphanumeric")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0,
		"Stop the poll after this long (0 = run until interrupted)")
	cmd.Flags().StringVar(&opts.dest, "dest", "",
		"Write poll results to this file as CSV")
	cmd.Flags().StringVar(&opts.frequency, "frequency", "aa",
		"Two base-station frequency codes, letters a-d (e.g. \"ab\")")

	return cmd
}

func run(opts options) error {
	if opts.debug {
		pkg.SetLogLevel(slog.LevelDebug)
	}
	if opts.jsonLogs {
		pkg.SetLogFormat(pkg.LogFormatJSON)
	}

	quiz, err := protocol.ParseQuizType(opts.pollType)
	if err != nil {
		return err
	}
	freq1, freq2, err := parseFrequency(opts.frequency)
	if err != nil {
		return err
	}

	fmt.Println("Finding iClicker base station")
	dev, err := hidapi.Open()
	if err != nil {
		return err
	}
	session := base.NewSession(dev)
	defer session.Close()

	fmt.Println("Initializing base station")
	if err := session.Initialize(freq1, freq2); err != nil {
		return err
	}

	engine := poll.New(session, poll.Config{
		Freq1: freq1,
		Freq2: freq2,
		OnResponse: func(r poll.Response) {
			fmt.Println(r)
		},
	})

	// Ctrl+C, kill, and the optional duration timer all funnel into the
	// same stop request.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.duration > 0 {
		timer := time.AfterFunc(opts.duration, engine.RequestStop)
		defer timer.Stop()
	}

	fmt.Println("Poll started")
	if err := engine.Run(ctx, quiz); err != nil {
		return err
	}

	if opts.dest != "" {
		fmt.Printf("Writing results to %s\n", opts.dest)
		if err := os.WriteFile(opts.dest, []byte(engine.ExportCSV()), 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
	}
	return nil
}

// parseFrequency validates a two-letter frequency pair like "aa" or "bc"
// and converts it to channel codes 0-3.
func parseFrequency(s string) (byte, byte, error) {
	s = strings.ToLower(s)
	if len(s) != 2 {
		return 0, 0, fmt.Errorf("frequency must be two letters a-d, not %q", s)
	}
	for i := 0; i < 2; i++ {
		if s[i] < 'a' || s[i] > 'd' {
			return 0, 0, fmt.Errorf("frequency combination %q is not valid", s)
		}
	}
	return s[0] - 'a', s[1] - 'a', nil
}
