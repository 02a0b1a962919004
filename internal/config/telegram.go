package config

type TelegramConfig struct {
	ApiToken string `yaml:"token"`
}

func (s *TelegramConfig) Token() string {
	return s.ApiToken
}
