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
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/movie-stats/internal/dataset"
	"github.com/ademuri/movie-stats/internal/source"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "movie-stats",
	Short: "Statistics over a movie ratings dataset",
	Long: `Loads a movie ratings file, filters it by release year, user rating and
genre, and reports per-movie and per-genre rating statistics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.movie-stats.yaml)")

	var src string
	rootCmd.PersistentFlags().StringVarP(
		&src, "source", "s", source.DriveURL(source.DefaultFileID), "URL or path of the ratings CSV")
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))

	var cacheDir string
	rootCmd.PersistentFlags().StringVar(
		&cacheDir, "cache_dir", "./cache", "Directory holding downloaded sources")
	viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache_dir"))

	var databasePath string
	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./movie-stats.db", "Path to the SQLite database of fetched sources")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var rows int
	rootCmd.PersistentFlags().IntVar(
		&rows, "rows", dataset.DefaultRowLimit, "Maximum number of data rows read from the source")
	viper.BindPFlag("rows", rootCmd.PersistentFlags().Lookup("rows"))

	var attempts uint
	rootCmd.PersistentFlags().UintVar(&attempts, "attempts", 3, "Download attempts before giving up")
	viper.BindPFlag("attempts", rootCmd.PersistentFlags().Lookup("attempts"))

	var timeout string
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "1m", "Timeout of a single download attempt")
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	var maxAge string
	rootCmd.PersistentFlags().StringVar(&maxAge, "max_age", "24h", "Use a cached download younger than this without revalidating")
	viper.BindPFlag("max_age", rootCmd.PersistentFlags().Lookup("max_age"))

	var from string
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".movie-stats" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".movie-stats")
	}

	// MOVIE_STATS_CACHE_DIR and friends.
	viper.SetEnvPrefix("movie_stats")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "", log.LstdFlags)
}
