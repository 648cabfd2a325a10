package sweep_test

import (
	"fmt"

	"github.com/cwbudde/algo-sweep/sweep"
)

func ExampleEngine_Process() {
	var e sweep.Engine

	if err := e.Prepare(sweep.DefaultConfig(8, 2)); err != nil {
		panic(err)
	}
	defer e.Cleanup()

	buf := e.NewSweepBuffer()
	burst := make([]byte, 16) // one 8-sample I/Q burst

	for i := 0; i < 2; i++ {
		done, err := e.Process(burst, buf)
		if err != nil {
			panic(err)
		}

		fmt.Println(done)
	}
	// Output:
	// false
	// true
}
