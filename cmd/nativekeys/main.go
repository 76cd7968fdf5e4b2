// Command nativekeys is a command line front end for the key utilities.
package main

import (
	"fmt"
	"os"

	"github.com/smallyu/go-nativekeys/pkg/nativeutils"
)

func main() {
	root, closeApp := newRootCmd(os.Stdout)
	err := root.Execute()
	closeApp()
	if err != nil {
		if kind := nativeutils.Kind(err); kind != "" {
			fmt.Fprintf(os.Stderr, "error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
