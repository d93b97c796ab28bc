package main

import (
	"fmt"
	"os"

	"github.com/terminus-io/hccdu/cmd/hcc-du/cmd"
	"k8s.io/klog/v2"
)

func main() {
	err := cmd.Execute()
	if err != nil {
		if msg := cmd.ErrorMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	klog.Flush()
	os.Exit(cmd.ExitCode(err))
}
