package main

import (
	"flag"
	"fmt"
	"os"

	"wikid/pkg/logger"
	"wikid/pkg/state"
	"wikid/pkg/store"
)

// inspect dumps raw records from a wiki database for debugging. The DB
// must not be open by a running server.
func main() {
	var (
		path   string
		prefix string
		key    string
	)
	flag.StringVar(&path, "db", "", "path to the database directory")
	flag.StringVar(&prefix, "prefix", "", "list keys under this prefix (e.g. page:, user:, hist:)")
	flag.StringVar(&key, "key", "", "print the raw value of one key")
	flag.Parse()
	if path == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	logger.Init("error")
	if err := store.Open(state.Layout(path).Store); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	if key != "" {
		raw, err := store.GetRaw(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "get %s: %v\n", key, err)
			os.Exit(1)
		}
		fmt.Println(string(raw))
		return
	}

	keys, err := store.ListKeys(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list %q: %v\n", prefix, err)
		os.Exit(1)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
}
