package batch_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockdrop/pkg/batch"
)

func ExampleRunner_Run() {
	r := batch.NewRunner(nil, nil, log.New(io.Discard))
	res, err := r.Run(context.Background(), strings.NewReader("Q0,Q2,Q4\n\nI0,I4,Q8\n"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if err := batch.WriteHeights(os.Stdout, res.Heights); err != nil {
		fmt.Println("error:", err)
	}
	// Output:
	// 2
	// 0
	// 1
}
