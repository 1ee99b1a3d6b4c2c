package file

import (
	"context"
	"fmt"
	"log"

	"CareerFindr-backend/internal/model"

	"gorm.io/gorm"
)

// ObjectLister is StorageClient that can enumerate its objects
type ObjectLister interface {
	StorageClient
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// SweepOrphanObjects delete objects under upload prefixes that no file record point to.
// With dryRun only the names are returned.
func SweepOrphanObjects(ctx context.Context, db *gorm.DB, store ObjectLister, dryRun bool) ([]string, error) {
	orphans := []string{}
	for _, prefix := range []string{documentObjectPrefix, resumeObjectPrefix, logoObjectPrefix} {
		names, err := store.ListObjects(ctx, prefix+"/")
		if err != nil {
			return orphans, err
		}
		if len(names) == 0 {
			continue
		}

		var known []string
		if err := db.WithContext(ctx).Model(&model.File{}).
			Where("storage_object_name IN ?", names).
			Pluck("storage_object_name", &known).Error; err != nil {
			return orphans, fmt.Errorf("failed to look up file records: %w", err)
		}
		referenced := make(map[string]struct{}, len(known))
		for _, k := range known {
			referenced[k] = struct{}{}
		}

		for _, name := range names {
			if _, ok := referenced[name]; ok {
				continue
			}
			orphans = append(orphans, name)
			if dryRun {
				continue
			}
			if err := store.DeleteFile(ctx, name); err != nil {
				log.Printf("failed to delete orphan object %s: %s", name, err)
			}
		}
	}
	return orphans, nil
}
