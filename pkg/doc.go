// Package pkg provides the core libraries for blockdrop, a tetromino drop
// simulator.
//
// # Overview
//
// Blockdrop drops scripted sequences of tetrominoes onto a 10-column board,
// clears full rows after every drop, and reports the final stack height. The
// pkg directory is organized into three areas:
//
//  1. Engine - [board] and [scenario]: the row-encoded board and the input grammar
//  2. Driver - [batch]: line-by-line simulation with ordered output
//  3. Infrastructure - [cache], [history], [api], [observability], [errors]
//
// # Architecture
//
// The typical data flow through blockdrop:
//
//	input line "Q0,I2,T4"
//	         ↓
//	    [scenario] package (tokens → drops, invalid-token policy)
//	         ↓
//	    [board] package (drop, clear, height on a fresh board)
//	         ↓
//	    [batch] package (one height per line, input order, optional cache)
//	         ↓
//	    Output.txt / HTTP response
//
// # Quick Start
//
// Simulate a single line:
//
//	import (
//	    "github.com/matzehuels/blockdrop/pkg/batch"
//	    "github.com/matzehuels/blockdrop/pkg/scenario"
//	)
//
//	sc, err := scenario.Parse("Q0,Q2,Q4", scenario.PolicyFail)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(batch.Simulate(sc).Height) // 2
//
// Simulate a file:
//
//	r := batch.NewRunner(nil, nil, logger)
//	res, err := r.RunFile(ctx, "Challenge_Input.txt", "Output.txt")
//
// # Main Packages
//
// [board] - The board is a slice of uint16 row masks, bottom row first. Bit c
// of a row is column c. Pieces are row templates shifted left by their column;
// collision is a bitwise AND and placement a bitwise OR.
//
// [scenario] - Parses comma-separated drop tokens. Malformed tokens either fail
// the line or are skipped, depending on the [scenario.Policy].
//
// [batch] - Runs scenarios from a reader, a slice or a file. Each line gets its
// own board, so lines can be simulated concurrently by a worker pool while the
// heights keep input order.
//
// [cache] - Optional per-line result cache with file and Redis backends.
//
// [history] - Optional archive of completed runs with file and MongoDB backends.
//
// [api] - HTTP API built on chi.
//
// [observability] - Hooks for batch, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/board/...              # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [board]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/board
// [scenario]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/scenario
// [batch]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/batch
// [cache]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/history
// [api]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/api
// [observability]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/blockdrop/pkg/errors
package pkg
