package users

import (
	"time"

	"marketplace-chat-api/internal/cache"
	"marketplace-chat-api/internal/models"

	"gorm.io/gorm"
)

// roleCacheTTL bounds how stale a cached role may be. Role changes are rare;
// reconnect storms are not, so a short TTL keeps the DB out of the hot path.
const roleCacheTTL = 5 * time.Minute

// RoleStore resolves user roles from the users table, with a small TTL cache
// in front. It implements realtime.RoleLookup.
type RoleStore struct {
	db    *gorm.DB
	cache *cache.TTLCache[string, models.Role]
}

// NewRoleStore creates a role store backed by the given database.
func NewRoleStore(db *gorm.DB) *RoleStore {
	return &RoleStore{
		db:    db,
		cache: cache.New[string, models.Role](),
	}
}

// FindUserRole returns the role for userID, or an error if the user does not
// exist or the database is unreachable.
func (s *RoleStore) FindUserRole(userID string) (models.Role, error) {
	if role, ok := s.cache.Get(userID); ok {
		return role, nil
	}

	var user models.User
	if err := s.db.Select("role").Where("id = ?", userID).First(&user).Error; err != nil {
		return "", err
	}

	s.cache.Set(userID, user.Role, roleCacheTTL)
	return user.Role, nil
}

// Invalidate drops a user's cached role, e.g. after an admin changes it.
func (s *RoleStore) Invalidate(userID string) {
	s.cache.Delete(userID)
}
