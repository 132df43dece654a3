// Package batch runs newline-delimited drop scenarios and reports one stack
// height per input line.
//
// # Architecture
//
// A [Runner] reads its input in a single forward pass. Each non-blank line is
// parsed by package scenario, simulated on a fresh board, and reduced to its
// final height; blank lines map straight to 0. Heights are returned in input
// order regardless of how many workers simulate lines concurrently, and no
// board is ever shared between lines.
//
// # Usage
//
//	runner := batch.NewRunner(nil, nil, logger)
//	result, err := runner.RunFile(ctx, "Challenge_Input.txt", "Output.txt")
//	if err != nil {
//	    return err
//	}
//	logger.Info("done", "lines", result.Stats.Lines)
//
// Run and RunLines operate on readers and in-memory lines for callers that
// do not use files, such as the HTTP API.
package batch
