package storage

// Presence lives in Redis so it disappears with the process rather than
// leaving stale "online" rows behind a crash. The count tracks multiple
// devices: the user stays online until the last connection goes away.

const onlineKeyPrefix = "online:"

func (s *Service) SetUserOnline(userID string) error {
	return s.Redis.Incr(s.Ctx, onlineKeyPrefix+userID).Err()
}

func (s *Service) SetUserOffline(userID string) error {
	n, err := s.Redis.Decr(s.Ctx, onlineKeyPrefix+userID).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return s.Redis.Del(s.Ctx, onlineKeyPrefix+userID).Err()
	}
	return nil
}

func (s *Service) IsUserOnline(userID string) (bool, error) {
	n, err := s.Redis.Exists(s.Ctx, onlineKeyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
