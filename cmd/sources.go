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
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/movie-stats/internal/store"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the downloaded sources",
	Long:  `Lists the remote sources recorded in the database, most recently fetched first.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := listSources(os.Stdout, viper.GetString("database"), viper.GetString("forget"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	var forget string
	sourcesCmd.Flags().StringVar(&forget, "forget", "", "Remove the record of this source URL before listing")
	viper.BindPFlag("forget", sourcesCmd.Flags().Lookup("forget"))
}

func listSources(out io.Writer, dbPath string, forget string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if forget != "" {
		if err := db.DeleteSource(forget); err != nil {
			return err
		}
	}

	sources, err := db.ListSources()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "URL\tFETCHED\tROWS\tSIZE\tSHA256\tPATH")
	for _, s := range sources {
		sum := s.SHA256
		if len(sum) > 12 {
			sum = sum[:12]
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", s.URL, s.FetchedAt.Format("2006-01-02 15:04"), s.Rows, s.Size, sum, s.Path)
	}
	return w.Flush()
}
