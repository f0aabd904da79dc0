// Command dbinspect dumps the persisted SnapTag documents for debugging.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/snaptagapp/snaptag-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/SnapTag/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	err = db.View(func(txn *badger.Txn) error {
		var groups []domain.TagGroup
		if err := readDocument(txn, "tagGroups", &groups); err != nil {
			return err
		}

		tagCount := 0
		for _, g := range groups {
			tagCount += len(g.Tags)
		}
		fmt.Printf("Tag groups: %d (%d tags)\n", len(groups), tagCount)
		for _, g := range groups {
			fmt.Printf("  %s (%s)\n", g.Name, g.ID)
			for _, t := range g.Tags {
				fmt.Printf("    - %s (%s)\n", t.Name, t.ID)
			}
		}

		var items []domain.ImageItem
		if err := readDocument(txn, "images", &items); err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("Images: %d\n", len(items))
		for _, img := range items {
			fmt.Printf("  %s  %s\n", img.ID, img.URI)
			if len(img.Tags) > 0 {
				fmt.Printf("    tags: %v\n", img.TagNames())
			}
		}

		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}
}

// readDocument decodes one whole-document key. A missing key reads as
// an empty collection.
func readDocument(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
