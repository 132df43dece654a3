package board_test

import (
	"fmt"

	"github.com/matzehuels/blockdrop/pkg/board"
)

func ExampleBoard_Drop() {
	b := board.New()
	b.Drop(board.MustLookup('I'), 0)
	b.Drop(board.MustLookup('T'), 1)
	fmt.Println(b)
	fmt.Println("height:", b.Height())
	// Output:
	// ..#.......
	// .###......
	// ####......
	// height: 3
}

func ExampleBoard_Clear() {
	b := board.New()
	for _, col := range []int{0, 2, 4, 6, 8} {
		b.Drop(board.MustLookup('Q'), col)
	}
	fmt.Println("cleared:", b.Clear())
	fmt.Println("height:", b.Height())
	// Output:
	// cleared: 2
	// height: 0
}
