package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/debatelab/arguegraph/internal/pipeline"
)

var (
	streamOut     string
	snapshotEvery bool
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream <file>",
	Short: "Replay a debate incrementally from NDJSON batch lines",
	Long: `Stream reads newline-delimited JSON, one extraction batch per line,
and feeds each batch to the analysis engine as it arrives. Analysis
reruns after every batch, the way it would during a live debate.

Each line uses the same shape as an analyze input file: claims,
relations and optional annotations / fact_checks. Pass "-" to read
from stdin.

Example:
  arguegraph stream debate.ndjson
  tail -f live.ndjson | arguegraph stream - --snapshots
  arguegraph stream debate.ndjson --json final.json`,
	Args: cobra.ExactArgs(1),
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().StringVar(&streamOut, "json", "", "final snapshot JSON path (default: stdout)")
	streamCmd.Flags().BoolVar(&snapshotEvery, "snapshots", false, "emit an intermediate snapshot line to stdout after every batch")
}

func runStream(cmd *cobra.Command, args []string) error {
	var r io.Reader
	if args[0] == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Output.Verbose = verbose
	logger := newLogger()
	coord := pipeline.NewCoordinator(cfg, logger)

	enc := json.NewEncoder(os.Stdout)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var batch batchFile
		if err := json.Unmarshal(line, &batch); err != nil {
			logger.Warn("skipping malformed batch line", "line", lineNum, "err", err)
			continue
		}

		if _, err := coord.IngestBatch(pipeline.Batch{Claims: batch.Claims, Relations: batch.Relations}); err != nil {
			return fmt.Errorf("line %d: ingest: %w", lineNum, err)
		}
		if len(batch.Annotations) > 0 {
			if _, err := coord.ApplyAnnotations(batch.Annotations); err != nil {
				return fmt.Errorf("line %d: apply annotations: %w", lineNum, err)
			}
		}
		if len(batch.FactChecks) > 0 {
			if _, err := coord.ApplyFactChecks(batch.FactChecks); err != nil {
				return fmt.Errorf("line %d: apply fact checks: %w", lineNum, err)
			}
		}

		snap, err := coord.Analyze()
		if err != nil {
			return fmt.Errorf("line %d: analyze: %w", lineNum, err)
		}
		if snapshotEvery {
			if err := enc.Encode(snap); err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	if lineNum == 0 {
		return fmt.Errorf("no batch lines read")
	}

	snap, err := coord.Finalize()
	if err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return writeSnapshot(snap, streamOut)
}
