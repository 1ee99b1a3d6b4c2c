package database

import (
	"context"
	"fmt"

	"CareerFindr-backend/internal/utilities"
)

const slugAttempts = 5

// AvailableSlug return slug of text that no row of record's table use yet.
// The plain slug is preferred, then a random suffix is appended.
func (d *DBinstanceStruct) AvailableSlug(ctx context.Context, record interface{}, text string) (string, error) {
	candidate := utilities.Slugify(text)
	if candidate == "" {
		candidate = utilities.UniqueSlug(text)
	}

	for i := 0; i < slugAttempts; i++ {
		var count int64
		if err := d.WithContext(ctx).Model(record).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = utilities.UniqueSlug(text)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", text, slugAttempts)
}
