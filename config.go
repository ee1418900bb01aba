package main

import (
	"os"

	"github.com/pelletier/go-toml"
)

type Configuration struct {
	App struct {
		Identity string `toml:"identity"`
	} `toml:"app"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func Setup(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(data, &conf)
	if err != nil {
		return nil, err
	}
	return &conf, nil
}
