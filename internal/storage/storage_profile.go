// /internal/storage/storage_profile.go
package storage

import "time"

// GetProfile returns the stored profile for a user in a guild, or nil when
// none exists. Absence is not an error; permission checks treat a missing
// profile as carrying no grant.
func (s *Storage) GetProfile(guildID, userID string) (*Profile, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	profile, exists := record.Profiles[userID]
	if !exists {
		return nil, nil
	}

	return &profile, nil
}

// SetProfileRank stores an explicit rank grant for a user. An empty rank
// removes the grant but keeps the profile.
func (s *Storage) SetProfileRank(guildID, userID, rank, grantedBy string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.Profiles[userID] = Profile{
		UserID:    userID,
		Rank:      rank,
		GrantedBy: grantedBy,
		UpdatedAt: time.Now(),
	}
	s.ds.Add(guildID, record)
	return nil
}

// ClearProfile removes a user's profile from a guild entirely.
func (s *Storage) ClearProfile(guildID, userID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	if _, exists := record.Profiles[userID]; exists {
		delete(record.Profiles, userID)
		s.ds.Add(guildID, record)
	}

	return nil
}
