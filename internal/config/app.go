package config

type AppConfig struct {
	TimezoneName   string `yaml:"timezone"`
	MetricsAddress string `yaml:"metrics-addr"`
}

func (s *AppConfig) Timezone() string {
	return s.TimezoneName
}

func (s *AppConfig) MetricsAddr() string {
	return s.MetricsAddress
}
