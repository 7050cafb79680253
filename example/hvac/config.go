package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	LLM   LLMConfig   `yaml:"llm"`
	Redis RedisConfig `yaml:"redis"`
	// BookingLog is the JSONL file completed bookings are appended to.
	BookingLog string `yaml:"booking_log"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := &Config{BookingLog: "booking_records.jsonl"}
	if err := yaml.Unmarshal(file, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if conf.LLM.APIKey == "" {
		conf.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return conf, nil
}
