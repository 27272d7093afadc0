// Command seed writes the bundled demo evaluations into a store file so a
// fresh deployment starts with real rows instead of the in-memory template.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/evalrank/evalrank/internal/adapters/repository"
	"github.com/evalrank/evalrank/internal/domain/ranking"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		storePath = flag.String("store", "evalrank.db", "Path to the evaluation store file")
		timeout   = flag.Duration("timeout", defaultTimeout, "Seeding timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	store, err := repository.NewSQLiteStore(ctx, *storePath)
	if err != nil {
		os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer store.Close()

	source := ranking.DemoSource()
	for _, staffID := range ranking.DemoStaffIDs() {
		if err := store.Save(ctx, staffID, source[staffID]); err != nil {
			os.Stderr.WriteString("failed to seed " + staffID + ": " + err.Error() + "\n")
			os.Exit(1)
		}
	}

	os.Stdout.WriteString("seeded " + *storePath + "\n")
}
