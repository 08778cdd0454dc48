package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/competition-manager/models"
)

const archiveContentType = "application/json"

// ArchiveKey is where the final snapshot of a competition is stored.
func ArchiveKey(competitionID string) string {
	return fmt.Sprintf("competitions/%s/final.json", competitionID)
}

// CompetitionArchiver writes finished competitions to object storage.
type CompetitionArchiver struct {
	uploader FileUploader
}

func NewCompetitionArchiver(uploader FileUploader) *CompetitionArchiver {
	return &CompetitionArchiver{uploader: uploader}
}

func (a *CompetitionArchiver) Archive(ctx context.Context, c *models.Competition) (*UploadResult, error) {
	body, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode competition %s for archive: %w", c.ID, err)
	}
	return a.uploader.Upload(ctx, ArchiveKey(c.ID), archiveContentType, bytes.NewReader(body))
}

// Remove deletes the archived snapshot of a deleted competition.
func (a *CompetitionArchiver) Remove(ctx context.Context, competitionID string) error {
	return a.uploader.Delete(ctx, ArchiveKey(competitionID))
}
