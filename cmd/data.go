/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/ademuri/movie-stats/internal/analysis"
	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/source"
	"github.com/ademuri/movie-stats/internal/store"
)

type LoadConfig struct {
	Source   string
	CacheDir string
	DbPath   string
	Rows     int
	Attempts uint
	Timeout  time.Duration
	MaxAge   time.Duration
	// Refresh forces a full download of a remote source.
	Refresh bool
}

func loadConfigFromViper() (LoadConfig, error) {
	config := LoadConfig{
		Source:   viper.GetString("source"),
		CacheDir: viper.GetString("cache_dir"),
		DbPath:   viper.GetString("database"),
		Rows:     viper.GetInt("rows"),
		Attempts: viper.GetUint("attempts"),
	}

	var err error
	config.Timeout, err = time.ParseDuration(viper.GetString("timeout"))
	if err != nil {
		return config, fmt.Errorf("--timeout: %w", err)
	}
	config.MaxAge, err = time.ParseDuration(viper.GetString("max_age"))
	if err != nil {
		return config, fmt.Errorf("--max_age: %w", err)
	}
	return config, nil
}

// loadDataset fetches the configured source if it is remote, then loads and
// sanitizes it.
func loadDataset(ctx context.Context, config LoadConfig, logger *log.Logger) (*dataset.Dataset, error) {
	if config.Source == "" {
		return nil, fmt.Errorf("no source configured")
	}

	path := config.Source
	var cache *source.Cache
	if source.IsRemote(config.Source) {
		db, err := store.New(config.DbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		fetcher := source.NewFetcher(source.Options{
			Attempts: config.Attempts,
			Timeout:  config.Timeout,
			Logger:   logger,
		})
		cache = source.NewCache(fetcher, db, config.CacheDir, logger)
		cache.MaxAge = config.MaxAge
		if config.Refresh {
			cache.MaxAge = 0
		}

		path, err = cache.Get(ctx, config.Source, config.Refresh)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ds, stats, err := analysis.Prepare(f, config.Rows)
	if err != nil {
		return nil, err
	}
	if stats.Skipped > 0 {
		logger.Printf("skipped %d malformed rows of %d", stats.Skipped, stats.Read)
	}
	if dropped := stats.Read - stats.Skipped - ds.Len(); dropped > 0 {
		logger.Printf("dropped %d rows without a valid release year", dropped)
	}

	if cache != nil {
		if err := cache.RecordRows(config.Source, ds.Len()); err != nil {
			return nil, fmt.Errorf("recording row count: %w", err)
		}
	}
	return ds, nil
}

// loadFromViper is the common entry point of commands that work on the data.
func loadFromViper(ctx context.Context) (*dataset.Dataset, error) {
	config, err := loadConfigFromViper()
	if err != nil {
		return nil, err
	}
	return loadDataset(ctx, config, newLogger())
}
