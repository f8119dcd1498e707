package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/storage"
)

// HistoryArchive is the JSON document written to object storage when a DM
// exports a character's audit trail.
type HistoryArchive struct {
	Character  models.Character           `json:"character"`
	Pool       models.ClaimPointPool      `json:"pool"`
	Entries    []models.ClaimHistoryEntry `json:"entries"`
	ExportedAt time.Time                  `json:"exported_at"`
}

type ExportService interface {
	// ExportHistory snapshots a character's pool and full history ledger to
	// object storage and returns where it landed.
	ExportHistory(ctx context.Context, characterID int) (*storage.UploadResult, error)
}

type exportService struct {
	characters CharacterService
	claims     ClaimService
	uploader   storage.FileUploader
}

func NewExportService(characters CharacterService, claims ClaimService, uploader storage.FileUploader) ExportService {
	return &exportService{characters: characters, claims: claims, uploader: uploader}
}

func (s *exportService) ExportHistory(ctx context.Context, characterID int) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}
	character, err := s.characters.GetCharacter(ctx, characterID)
	if err != nil {
		return nil, err
	}
	pool, err := s.claims.GetPool(ctx, characterID)
	if err != nil {
		return nil, err
	}
	entries, err := s.claims.GetHistory(ctx, characterID)
	if err != nil {
		return nil, err
	}

	archive := HistoryArchive{
		Character:  *character,
		Pool:       *pool,
		Entries:    entries,
		ExportedAt: time.Now().UTC(),
	}

	payload, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history archive: %w", err)
	}

	key := fmt.Sprintf("claim-history/character-%d/%s.json", characterID, archive.ExportedAt.Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to upload history archive: %w", err)
	}
	return result, nil
}
