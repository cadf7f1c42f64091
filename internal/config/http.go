package config

import "fmt"

type HTTPConfig struct {
	HostName string `yaml:"host"`
	PortNum  int    `yaml:"port"`
}

func (s *HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.HostName, s.PortNum)
}
