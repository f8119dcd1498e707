package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mrdatawolf/DM-Helper/models"
	"github.com/mrdatawolf/DM-Helper/repositories"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. The
// fake transaction manager snapshots it before each transaction and
// restores it on error, mirroring rollback semantics.
type fakeStore struct {
	mu          sync.Mutex
	characters  map[int]models.Character
	pools       map[int]models.ClaimPointPool
	claims      map[int]map[string]models.AttributeClaim
	history     []models.ClaimHistoryEntry
	perceptions map[string]models.PerceivedRanking

	nextCharacterID int
	nextClaimID     int
	nextHistoryID   int
	nextPerception  int
	clock           time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		characters:      make(map[int]models.Character),
		pools:           make(map[int]models.ClaimPointPool),
		claims:          make(map[int]map[string]models.AttributeClaim),
		perceptions:     make(map[string]models.PerceivedRanking),
		nextCharacterID: 1,
		nextClaimID:     1,
		nextHistoryID:   1,
		nextPerception:  1,
		clock:           time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so updated_at tie-breaks
// are deterministic in tests.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) addCharacter(name string) models.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	character := models.Character{ID: s.nextCharacterID, Name: name, CreatedAt: s.tick()}
	s.nextCharacterID++
	s.characters[character.ID] = character
	return character
}

func (s *fakeStore) addPool(characterID, total, spent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[characterID] = models.ClaimPointPool{CharacterID: characterID, TotalPoints: total, SpentPoints: spent}
}

func (s *fakeStore) snapshot() *fakeStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := newFakeStore()
	clone.nextCharacterID = s.nextCharacterID
	clone.nextClaimID = s.nextClaimID
	clone.nextHistoryID = s.nextHistoryID
	clone.nextPerception = s.nextPerception
	clone.clock = s.clock
	for id, c := range s.characters {
		clone.characters[id] = c
	}
	for id, p := range s.pools {
		clone.pools[id] = p
	}
	for id, byAttr := range s.claims {
		inner := make(map[string]models.AttributeClaim, len(byAttr))
		for attr, claim := range byAttr {
			inner[attr] = claim
		}
		clone.claims[id] = inner
	}
	clone.history = append([]models.ClaimHistoryEntry(nil), s.history...)
	for key, p := range s.perceptions {
		clone.perceptions[key] = p
	}
	return clone
}

func (s *fakeStore) restore(from *fakeStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters = from.characters
	s.pools = from.pools
	s.claims = from.claims
	s.history = from.history
	s.perceptions = from.perceptions
	s.nextCharacterID = from.nextCharacterID
	s.nextClaimID = from.nextClaimID
	s.nextHistoryID = from.nextHistoryID
	s.nextPerception = from.nextPerception
	s.clock = from.clock
}

// fakeTxManager runs the function directly against the store, restoring a
// snapshot when it fails.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	before := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(before)
		return err
	}
	return nil
}

// fakeBroadcaster records feed messages per room.
type fakeBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]interface{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{messages: make(map[string][]interface{})}
}

func (b *fakeBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[roomID] = append(b.messages[roomID], message)
}

type fakeCharacterRepo struct{ store *fakeStore }

func (r *fakeCharacterRepo) Create(ctx context.Context, exec repositories.SQLExecutor, character *models.Character) error {
	*character = r.store.addCharacter(character.Name)
	return nil
}

func (r *fakeCharacterRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Character, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	character, ok := r.store.characters[id]
	if !ok {
		return nil, repositories.ErrCharacterNotFound
	}
	return &character, nil
}

func (r *fakeCharacterRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]models.Character, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	characters := make([]models.Character, 0, len(r.store.characters))
	for _, c := range r.store.characters {
		characters = append(characters, c)
	}
	sort.Slice(characters, func(i, j int) bool { return characters[i].Name < characters[j].Name })
	return characters, nil
}

func (r *fakeCharacterRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.characters[id]; !ok {
		return repositories.ErrCharacterNotFound
	}
	delete(r.store.characters, id)
	delete(r.store.pools, id)
	delete(r.store.claims, id)
	return nil
}

type fakePoolRepo struct{ store *fakeStore }

func (r *fakePoolRepo) Create(ctx context.Context, exec repositories.SQLExecutor, pool *models.ClaimPointPool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.pools[pool.CharacterID] = *pool
	return nil
}

func (r *fakePoolRepo) GetByCharacterID(ctx context.Context, exec repositories.SQLExecutor, characterID int) (*models.ClaimPointPool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pool, ok := r.store.pools[characterID]
	if !ok {
		return nil, repositories.ErrPoolNotFound
	}
	return &pool, nil
}

func (r *fakePoolRepo) GetByCharacterIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, characterID int) (*models.ClaimPointPool, error) {
	return r.GetByCharacterID(ctx, exec, characterID)
}

func (r *fakePoolRepo) AddSpent(ctx context.Context, exec repositories.SQLExecutor, characterID, amount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pool, ok := r.store.pools[characterID]
	if !ok {
		return repositories.ErrPoolNotFound
	}
	pool.SpentPoints += amount
	r.store.pools[characterID] = pool
	return nil
}

func (r *fakePoolRepo) AddTotal(ctx context.Context, exec repositories.SQLExecutor, characterID, amount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	pool, ok := r.store.pools[characterID]
	if !ok {
		return repositories.ErrPoolNotFound
	}
	pool.TotalPoints += amount
	r.store.pools[characterID] = pool
	return nil
}

type fakeClaimRepo struct{ store *fakeStore }

func (r *fakeClaimRepo) GetByCharacterAndAttribute(ctx context.Context, exec repositories.SQLExecutor, characterID int, attribute string) (*models.AttributeClaim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	claim, ok := r.store.claims[characterID][attribute]
	if !ok {
		return nil, repositories.ErrClaimNotFound
	}
	return &claim, nil
}

func (r *fakeClaimRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, characterID int, attribute string, pointsToAdd int, justification string) (*models.AttributeClaim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.claims[characterID] == nil {
		r.store.claims[characterID] = make(map[string]models.AttributeClaim)
	}
	claim, ok := r.store.claims[characterID][attribute]
	if !ok {
		claim = models.AttributeClaim{
			ID:            r.store.nextClaimID,
			CharacterID:   characterID,
			AttributeName: attribute,
			ClaimedAt:     r.store.clock,
		}
		r.store.nextClaimID++
	}
	claim.PointsSpent += pointsToAdd
	claim.Justification = justification
	claim.UpdatedAt = r.store.tick()
	r.store.claims[characterID][attribute] = claim
	return &claim, nil
}

func (r *fakeClaimRepo) ListByCharacter(ctx context.Context, exec repositories.SQLExecutor, characterID int) ([]models.AttributeClaim, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	claims := make([]models.AttributeClaim, 0)
	for _, claim := range r.store.claims[characterID] {
		claims = append(claims, claim)
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].AttributeName < claims[j].AttributeName })
	return claims, nil
}

func (r *fakeClaimRepo) ListRankingRows(ctx context.Context, exec repositories.SQLExecutor, attribute string) ([]models.RankingEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rows := make([]models.RankingEntry, 0)
	for characterID, byAttr := range r.store.claims {
		claim, ok := byAttr[attribute]
		if !ok {
			continue
		}
		name := r.store.characters[characterID].Name
		if name == "" {
			name = "character-" + strconv.Itoa(characterID)
		}
		rows = append(rows, models.RankingEntry{
			CharacterID:   characterID,
			CharacterName: name,
			AttributeName: attribute,
			PointsSpent:   claim.PointsSpent,
			Justification: claim.Justification,
			UpdatedAt:     claim.UpdatedAt,
		})
	}
	return rows, nil
}

func (r *fakeClaimRepo) ListAttributes(ctx context.Context, exec repositories.SQLExecutor) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	seen := make(map[string]bool)
	for _, byAttr := range r.store.claims {
		for attribute := range byAttr {
			seen[attribute] = true
		}
	}
	attributes := make([]string, 0, len(seen))
	for attribute := range seen {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)
	return attributes, nil
}

type fakeHistoryRepo struct {
	store     *fakeStore
	appendErr error // injected storage failure
}

func (r *fakeHistoryRepo) Append(ctx context.Context, exec repositories.SQLExecutor, entry *models.ClaimHistoryEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entry.ID = r.store.nextHistoryID
	r.store.nextHistoryID++
	entry.ChangedAt = r.store.tick()
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByCharacter(ctx context.Context, exec repositories.SQLExecutor, characterID int) ([]models.ClaimHistoryEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	entries := make([]models.ClaimHistoryEntry, 0)
	for _, entry := range r.store.history {
		if entry.CharacterID == characterID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })
	return entries, nil
}

type fakePerceptionRepo struct{ store *fakeStore }

func perceptionKey(observerID, targetID int, attribute string) string {
	return strconv.Itoa(observerID) + "/" + strconv.Itoa(targetID) + "/" + attribute
}

func (r *fakePerceptionRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, perception *models.PerceivedRanking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := perceptionKey(perception.ObserverCharacterID, perception.TargetCharacterID, perception.AttributeName)
	if existing, ok := r.store.perceptions[key]; ok {
		perception.ID = existing.ID
	} else {
		perception.ID = r.store.nextPerception
		r.store.nextPerception++
	}
	perception.UpdatedAt = r.store.tick()
	r.store.perceptions[key] = *perception
	return nil
}

func (r *fakePerceptionRepo) ListByObserverAndAttribute(ctx context.Context, exec repositories.SQLExecutor, observerID int, attribute string) ([]models.PerceivedRanking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	perceptions := make([]models.PerceivedRanking, 0)
	for _, p := range r.store.perceptions {
		if p.ObserverCharacterID == observerID && p.AttributeName == attribute {
			p.TargetCharacterName = r.store.characters[p.TargetCharacterID].Name
			perceptions = append(perceptions, p)
		}
	}
	sort.Slice(perceptions, func(i, j int) bool { return perceptions[i].PerceivedPoints > perceptions[j].PerceivedPoints })
	return perceptions, nil
}
