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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/movie-stats/internal/dataset"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Downloads the ratings file",
	Long: `Downloads the ratings file into the local cache, or revalidates the cached
copy. A copy fetched within --max_age is reused unless --force is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfigFromViper()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		config.Refresh = viper.GetBool("force")

		ds, err := loadDataset(context.Background(), config, newLogger())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		printFetchSummary(os.Stdout, ds)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	var force bool
	fetchCmd.Flags().BoolVarP(&force, "force", "f", false, "Download even if the cached copy is current")
	viper.BindPFlag("force", fetchCmd.Flags().Lookup("force"))
}

func printFetchSummary(out io.Writer, ds *dataset.Dataset) {
	min, max, ok := ds.YearBounds()
	if !ok {
		fmt.Fprintf(out, "Loaded 0 records\n")
		return
	}
	fmt.Fprintf(out, "Loaded %d records, %d to %d\n", ds.Len(), min, max)
}
