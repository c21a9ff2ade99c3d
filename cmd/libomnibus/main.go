// Command libomnibus builds the omnibus C library:
//
//	go build -buildmode=c-shared -o libomnibus.so ./cmd/libomnibus
//	go build -buildmode=c-archive -o libomnibus.a ./cmd/libomnibus
//
// C callers include cabi/omnibus.h, which declares every exported symbol
// along with the tuple and store types. The exports live in package cabi, so
// the build writes no header of its own. OMNIBUS_LOG_LEVEL and
// OMNIBUS_METRICS are read once when the library loads.
package main

import "C"

import (
	"fmt"
	"os"

	"github.com/wippyai/ffi-omnibus/cabi"
)

func init() {
	cfg, err := cabi.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "libomnibus: %v, using defaults\n", err)
		cfg = cabi.DefaultConfig()
	}
	if err := cabi.Configure(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "libomnibus: %v\n", err)
	}
}

func main() {}
