package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "deskvox-ctl:", err)
		os.Exit(1)
	}
}
