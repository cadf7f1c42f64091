package config

import "time"

type AuthConfig struct {
	SecretKey string `yaml:"secret"`
	TTLHours  int64  `yaml:"session-ttl-hours"`
}

func (s *AuthConfig) Secret() string {
	return s.SecretKey
}

func (s *AuthConfig) SessionTTL() time.Duration {
	if s.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}
