package cli

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tutu-network/proverd/internal/config"
	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/runtime"
	"github.com/tutu-network/proverd/internal/security"
	"github.com/tutu-network/proverd/internal/workerpool"
)

func init() {
	startCmd.Flags().BoolVar(&startAnonymous, "anonymous", false, "run without task fetching or submission, proving a fixed input on a timer")
	startCmd.Flags().IntVar(&startWorkers, "workers", 0, "number of proving workers (overrides config, clamped to 1-8)")
	startCmd.Flags().StringVar(&startGeoDB, "geo-db", "", "path to a MaxMind GeoLite2-Country database (overrides config, falls back to network lookup when unset)")
	rootCmd.AddCommand(startCmd)
}

var (
	startAnonymous bool
	startWorkers   int
	startGeoDB     string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the prover worker pipeline",
	Long:  `Start fetches tasks, computes proofs, and submits results in a continuous loop. --anonymous runs proving in isolation, with no coordinator.`,
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	shutdown := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(shutdown)
	}()

	if startAnonymous {
		return runAnonymous(shutdown)
	}
	return runAuthenticated(shutdown)
}

func runAnonymous(shutdown <-chan struct{}) error {
	numWorkers := workerpool.ClampWorkerCount(resolveWorkerCount(config.DefaultConfig()))
	events := runtime.StartAnonymous(numWorkers, shutdown)
	printEvents(events)
	return nil
}

func runAuthenticated(shutdown <-chan struct{}) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	keys, err := security.LoadOrCreateKeypair(cfg.Keys.Path)
	if err != nil {
		return fmt.Errorf("load keypair: %w", err)
	}

	identity := security.NewNodeIdentity(keys, cfg.Node.ID)

	orch := orchestrator.NewHTTPClient(cfg.BaseURL())
	numWorkers := workerpool.ClampWorkerCount(resolveWorkerCount(cfg))

	events, err := runtime.StartAuthenticated(identity, orch, numWorkers, resolveGeoDBPath(cfg), shutdown)
	if err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	printEvents(events)
	return nil
}

func resolveWorkerCount(cfg config.Config) int {
	if startWorkers > 0 {
		return startWorkers
	}
	return cfg.Worker.Count
}

func resolveGeoDBPath(cfg config.Config) string {
	if startGeoDB != "" {
		return startGeoDB
	}
	return cfg.Geo.MMDBPath
}

func printEvents(events runtime.EventStream) {
	for e := range events {
		logEvent(e)
	}
}

func logEvent(e domain.Event) {
	switch e.Kind {
	case domain.EventProofAccepted:
		log.Printf("proof accepted task=%s", e.TaskID)
	case domain.EventProofComputed:
		log.Printf("proof computed worker=%d task=%s elapsed=%s", e.WorkerID, e.TaskID, e.Elapsed)
	case domain.EventProofError:
		log.Printf("proof error worker=%d task=%s kind=%s", e.WorkerID, e.TaskID, e.ErrorKind)
	case domain.EventSubmitError:
		log.Printf("submit error task=%s kind=%s", e.TaskID, e.ErrorKind)
	case domain.EventFetcherBackoff:
		log.Printf("fetcher backoff reason=%s duration=%s", e.BackoffReason, e.BackoffDuration)
	case domain.EventQueueLevel:
		log.Printf("queue level %d/%d", e.QueueLen, e.QueueCap)
	case domain.EventStats:
		log.Printf("stats accepted=%d rate_per_min=%.2f", e.Accepted, e.RatePerMin)
	default:
		log.Printf("event kind=%s", e.Kind)
	}
}
