package memory

import (
	"context"

	"github.com/chris/fairtask-ledger/pkg/models"
)

func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) PutSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Store) GetEmergencyState(ctx context.Context) (models.EmergencyState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emergency, nil
}

func (s *Store) SetEmergencyFlag(ctx context.Context, flag models.EmergencyFlag, value bool) (models.EmergencyState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emergency = s.emergency.With(flag, value)
	return s.emergency, nil
}

func (s *Store) ClaimAward(ctx context.Context, claim *models.AwardClaim) (*models.AwardClaim, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.awards[claim.Period]; ok {
		return cloneClaim(stored), false, nil
	}
	s.awards[claim.Period] = cloneClaim(claim)
	return cloneClaim(claim), true, nil
}

func cloneClaim(c *models.AwardClaim) *models.AwardClaim {
	out := *c
	out.Winners = append([]models.AwardWinner(nil), c.Winners...)
	return &out
}
