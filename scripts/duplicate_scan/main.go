package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/perum-adp-api/internal/models"
	"github.com/noah-isme/perum-adp-api/pkg/config"
	"github.com/noah-isme/perum-adp-api/pkg/database"
	"github.com/noah-isme/perum-adp-api/pkg/docstore"
)

// An interrupted move leaves a record readable from both the active and the
// archived view. This scan walks every kind's collection pair and reports the
// leftovers so an operator can retry the move or remove the stale copy.

type finding struct {
	Kind       models.RecordKind
	ActiveID   string
	ArchivedID string
	ArchivedAt string
	SameID     bool
}

func main() {
	var (
		kindFilter string
		limit      int
		timeout    time.Duration
	)

	flag.StringVar(&kindFilter, "kind", "", "Scan a single record kind (default: all kinds)")
	flag.IntVar(&limit, "limit", 5000, "Maximum documents to load per collection")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Scan deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	store := docstore.NewPostgresStore(db, zap.NewNop())

	kinds := models.Kinds()
	if kindFilter != "" {
		desc, ok := models.ParseKind(kindFilter)
		if !ok {
			log.Fatalf("unknown record kind %q", kindFilter)
		}
		kinds = []models.KindDescriptor{desc}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var findings []finding
	for _, desc := range kinds {
		found, err := scanKind(ctx, store, desc, limit)
		if err != nil {
			log.Fatalf("failed to scan %s: %v", desc.Kind, err)
		}
		findings = append(findings, found...)
	}

	printReport(findings)

	fmt.Printf("Records visible in both views: %d\n", len(findings))
	if len(findings) > 0 {
		os.Exit(1)
	}
}

func scanKind(ctx context.Context, store docstore.Store, desc models.KindDescriptor, limit int) ([]finding, error) {
	activeDocs, err := store.Collection(desc.ActiveCollection).List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", desc.ActiveCollection, err)
	}
	archivedDocs, err := store.Collection(desc.ArchiveCollection).List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", desc.ArchiveCollection, err)
	}

	activeIDs := make(map[string]struct{}, len(activeDocs))
	for _, doc := range activeDocs {
		activeIDs[doc.ID] = struct{}{}
	}

	var findings []finding
	for _, doc := range archivedDocs {
		rec := models.RecordFromDocument(desc.Kind, doc)
		if _, ok := activeIDs[doc.ID]; ok {
			findings = append(findings, finding{
				Kind:       desc.Kind,
				ActiveID:   doc.ID,
				ArchivedID: doc.ID,
				ArchivedAt: rec.StringField(models.FieldArchivedAt),
				SameID:     true,
			})
			continue
		}
		original := rec.StringField(models.FieldOriginalID)
		if original == "" {
			continue
		}
		if _, ok := activeIDs[original]; ok {
			findings = append(findings, finding{
				Kind:       desc.Kind,
				ActiveID:   original,
				ArchivedID: doc.ID,
				ArchivedAt: rec.StringField(models.FieldArchivedAt),
			})
		}
	}
	return findings, nil
}

func printReport(findings []finding) {
	fmt.Println("Duplicate Scan Report")
	fmt.Println("=====================")
	if len(findings) == 0 {
		fmt.Println("No record is present in both its active and archived collection.")
		return
	}
	for _, f := range findings {
		link := "archived copy still points at a live active record"
		if f.SameID {
			link = "identical document id in both collections"
		}
		fmt.Printf("[DUP] kind=%s active=%s archived=%s\n", f.Kind, f.ActiveID, f.ArchivedID)
		fmt.Printf("  %s", link)
		if f.ArchivedAt != "" {
			fmt.Printf(" | archived at %s", f.ArchivedAt)
		}
		fmt.Println()
	}
}
