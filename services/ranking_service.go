package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
	"golang.org/x/sync/errgroup"
)

type RankingService interface {
	// RankAttribute orders every claim on the attribute by investment and
	// flags the true best claimant. An attribute nobody has claimed yields
	// an empty ranking, not an error.
	RankAttribute(ctx context.Context, attribute string) ([]models.DMRankingEntry, error)
	// RankAll produces the DM dashboard: every claimed attribute mapped to
	// its ranking.
	RankAll(ctx context.Context) (map[string][]models.DMRankingEntry, error)
}

type rankingService struct {
	claimRepo repositories.ClaimRepository
}

func NewRankingService(claimRepo repositories.ClaimRepository) RankingService {
	return &rankingService{claimRepo: claimRepo}
}

func (s *rankingService) RankAttribute(ctx context.Context, attribute string) ([]models.DMRankingEntry, error) {
	attribute = strings.TrimSpace(attribute)
	if attribute == "" {
		return nil, ErrAttributeNameRequired
	}

	rows, err := s.claimRepo.ListRankingRows(ctx, nil, attribute)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims for attribute %q: %w", attribute, err)
	}
	return rankEntries(rows), nil
}

func (s *rankingService) RankAll(ctx context.Context) (map[string][]models.DMRankingEntry, error) {
	attributes, err := s.claimRepo.ListAttributes(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list claimed attributes: %w", err)
	}

	all := make(map[string][]models.DMRankingEntry, len(attributes))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, attribute := range attributes {
		attribute := attribute
		g.Go(func() error {
			rows, err := s.claimRepo.ListRankingRows(gCtx, nil, attribute)
			if err != nil {
				return fmt.Errorf("failed to load claims for attribute %q: %w", attribute, err)
			}
			ranked := rankEntries(rows)
			mu.Lock()
			all[attribute] = ranked
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// rankEntries sorts claims by points_spent descending, breaking ties by
// earliest updated_at (rewarding early commitment), then by character id
// as a final deterministic fallback. The first entry is the true best.
func rankEntries(rows []models.RankingEntry) []models.DMRankingEntry {
	sorted := make([]models.RankingEntry, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PointsSpent != sorted[j].PointsSpent {
			return sorted[i].PointsSpent > sorted[j].PointsSpent
		}
		if !sorted[i].UpdatedAt.Equal(sorted[j].UpdatedAt) {
			return sorted[i].UpdatedAt.Before(sorted[j].UpdatedAt)
		}
		return sorted[i].CharacterID < sorted[j].CharacterID
	})

	ranked := make([]models.DMRankingEntry, len(sorted))
	for i, row := range sorted {
		ranked[i] = models.DMRankingEntry{
			RankingEntry: row,
			RankPosition: i + 1,
			IsBest:       i == 0,
		}
	}
	return ranked
}
